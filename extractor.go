package skywatch

import "context"

// Strategy identifies which extraction or geocoding implementation produced
// a result.
type Strategy string

// Strategy values recorded on results for auditability.
const (
	StrategyPrimary  Strategy = "primary"
	StrategyFallback Strategy = "fallback"
)

// Extraction holds the candidate records extracted from one document.
// An empty Records slice from a successful parse is not an error: some
// reports genuinely contain no sightings.
type Extraction struct {
	Records  []*Sighting
	Strategy Strategy

	// Note carries an optional diagnostic, e.g. why the primary strategy
	// was abandoned in favor of the fallback.
	Note string
}

// TextExtractor converts raw document bytes into plain text.
type TextExtractor interface {
	ExtractText(content []byte) (string, error)
}

// Extractor converts one document's text into candidate sighting records.
// Two implementations share this interface: a model-backed primary and a
// deterministic rule-based fallback.
type Extractor interface {
	// Extract parses text into sighting records. Only sightings located in
	// the United Kingdom are returned. Errors are classified transient
	// (service overload) or permanent (malformed input, schema violation).
	Extract(ctx context.Context, doc *Document, text string) (*Extraction, error)
}
