package skywatch

import (
	"context"
	"time"
)

// Status represents a document's position in the processing state machine:
// pending → fetching → fetched → extracting → extracted → geocoding → done,
// with failed reachable from any non-terminal state.
type Status string

// Document status values.
const (
	StatusPending    Status = "pending"
	StatusFetching   Status = "fetching"
	StatusFetched    Status = "fetched"
	StatusExtracting Status = "extracting"
	StatusExtracted  Status = "extracted"
	StatusGeocoding  Status = "geocoding"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further processing occurs for a document in
// this status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Document identifies one source PDF and its processing state. The raw
// bytes live in the run's working directory and are released once the
// document's records are owned by the aggregator or the document is marked
// permanently failed.
type Document struct {
	// URL is the stable source identifier.
	URL string

	// Name is a filesystem-safe identifier derived from the URL.
	Name string

	// ContentHash is the xxHash of the fetched bytes, hex encoded.
	ContentHash string

	Status    Status
	Reason    string
	FetchedAt time.Time
}

// DocumentSource discovers source document URLs from a publications page.
type DocumentSource interface {
	// Discover returns the deduplicated list of PDF URLs linked from the
	// given listing page.
	Discover(ctx context.Context, listURL string) ([]string, error)
}

// Fetcher downloads one source document.
type Fetcher interface {
	// Fetch retrieves the raw bytes for the given URL. Failures are
	// classified: EUNAVAILABLE/ETIMEOUT errors are transient and may be
	// retried by the caller; everything else is permanent.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Ledger records document processing status so that already-processed
// documents are skipped on subsequent runs.
type Ledger interface {
	// Status returns the last recorded status for a document URL.
	// Returns ENOTFOUND if the document has never been seen.
	Status(ctx context.Context, url string) (Status, error)

	// Record upserts the document's current status, reason and content hash.
	Record(ctx context.Context, doc *Document) error
}
