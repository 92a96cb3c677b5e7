// Package tabular provides the deterministic fallback implementation of
// skywatch.Extractor. It parses the column layout of UK government
// sighting-report tables (date, time, town/village, area, occupation,
// description) from row-structured document text without any external
// service.
package tabular

import (
	"context"
	"regexp"
	"strings"

	"github.com/fwojciec/skywatch"
)

// notGiven is the placeholder the source reports use for missing values.
const notGiven = "Not Given"

var (
	// dateRe matches the date formats seen across report years:
	// 16-Feb-09, 16/02/2009, 2009-02-16.
	dateRe = regexp.MustCompile(`^(\d{1,2}-[A-Za-z]{3}-\d{2,4}|\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})$`)

	// timeRe matches 19:19, 7:05pm, 2315, 2315hrs.
	timeRe = regexp.MustCompile(`^(\d{1,2}[:.]\d{2}\s?(am|pm|AM|PM)?|\d{3,4}\s?(hrs|Hrs)?)$`)

	// cellRe splits a row into cells on runs of two or more spaces, the
	// column-boundary marker produced by the PDF text extractor.
	cellRe = regexp.MustCompile(`\s{2,}`)
)

// Ensure Extractor implements skywatch.Extractor at compile time.
var _ skywatch.Extractor = (*Extractor)(nil)

// Extractor is the rule-based fallback extractor. It is lower recall than
// the model-backed primary but requires no external service and always
// produces the same records for the same input.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses row-structured text into sighting records. A line whose
// first cell is a date starts a record; lines without a leading date
// continue the previous record's incident text. A document with no
// parseable rows yields an empty, successful result.
func (e *Extractor) Extract(ctx context.Context, doc *skywatch.Document, text string) (*skywatch.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, skywatch.Errorf(skywatch.ECANCELED, "extraction canceled")
	}

	var records []*skywatch.Sighting
	var current *skywatch.Sighting

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" || isHeader(line) {
			continue
		}

		cells := splitCells(line)
		if len(cells) == 0 || !dateRe.MatchString(cells[0]) {
			// Continuation of the previous record's description.
			if current != nil {
				current.Incident = strings.TrimSpace(current.Incident + " " + strings.TrimSpace(line))
			}
			continue
		}

		current = parseRow(cells)
		if doc != nil {
			current.SourceURL = doc.URL
		}
		records = append(records, current)
	}

	return &skywatch.Extraction{
		Records:  records,
		Strategy: skywatch.StrategyFallback,
		Note:     "deterministic row parser",
	}, nil
}

// parseRow maps one table row onto a sighting. The last cell is always the
// incident description; cells between the optional time and the incident
// are town, area, occupation in report column order.
func parseRow(cells []string) *skywatch.Sighting {
	s := &skywatch.Sighting{
		Date:        cells[0],
		Time:        notGiven,
		Town:        notGiven,
		Area:        notGiven,
		Occupation:  notGiven,
		Incident:    "",
		Coordinates: skywatch.Unresolved(),
	}

	rest := cells[1:]
	if len(rest) > 0 && timeRe.MatchString(rest[0]) {
		s.Time = rest[0]
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return s
	}

	s.Incident = rest[len(rest)-1]
	rest = rest[:len(rest)-1]

	fields := []*string{&s.Town, &s.Area, &s.Occupation}
	for i, cell := range rest {
		if i >= len(fields) {
			break
		}
		if cell != "" {
			*fields[i] = cell
		}
	}
	return s
}

// splitCells breaks a row into its column cells.
func splitCells(line string) []string {
	var cells []string
	for _, c := range cellRe.Split(strings.TrimSpace(line), -1) {
		c = strings.TrimSpace(c)
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// isHeader reports whether a line is a table header rather than data.
func isHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "date") &&
		(strings.Contains(lower, "description") || strings.Contains(lower, "town"))
}
