// Package pdf extracts plain text from PDF documents using ledongthuc/pdf.
package pdf

import (
	"bytes"
	"strings"

	"github.com/fwojciec/skywatch"
	ledongthuc "github.com/ledongthuc/pdf"
)

// cellGap is the horizontal distance (in PDF points) between two text
// fragments on the same row that marks a column boundary in the tabular
// sighting reports.
const cellGap = 12.0

// Ensure Extractor implements skywatch.TextExtractor at compile time.
var _ skywatch.TextExtractor = (*Extractor)(nil)

// Extractor converts PDF bytes into plain text, one output line per visual
// row, with column boundaries rendered as runs of two spaces. The fallback
// record parser depends on that layout.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the document text. Corrupt or encrypted documents
// produce an EINVALID error, which is permanent for the document.
func (e *Extractor) ExtractText(content []byte) (string, error) {
	r, err := ledongthuc.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", skywatch.Errorf(skywatch.EINVALID, "unreadable PDF: %v", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// Fall back to unstructured text for pages whose layout
			// cannot be recovered.
			plain, perr := page.GetPlainText(nil)
			if perr != nil {
				continue
			}
			sb.WriteString(plain)
			sb.WriteString("\n")
			continue
		}

		for _, row := range rows {
			writeRow(&sb, row)
		}
	}

	return sb.String(), nil
}

// writeRow renders one visual row as a single text line.
func writeRow(sb *strings.Builder, row *ledongthuc.Row) {
	var prevEnd float64
	var prev string
	first := true
	for _, t := range row.Content {
		s := t.S
		if strings.TrimSpace(s) == "" {
			continue
		}
		switch {
		case first:
			first = false
		case t.X-prevEnd > cellGap:
			sb.WriteString("  ")
		case !strings.HasSuffix(prev, " ") && !strings.HasPrefix(s, " "):
			sb.WriteString(" ")
		}
		sb.WriteString(s)
		prev = s
		prevEnd = t.X + t.W
	}
	if !first {
		sb.WriteString("\n")
	}
}
