// Package mock provides function-field mock implementations of the
// skywatch service interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/skywatch"
)

var _ skywatch.DocumentSource = (*DocumentSource)(nil)

// DocumentSource is a mock implementation of skywatch.DocumentSource.
type DocumentSource struct {
	DiscoverFn func(ctx context.Context, listURL string) ([]string, error)
}

func (s *DocumentSource) Discover(ctx context.Context, listURL string) ([]string, error) {
	return s.DiscoverFn(ctx, listURL)
}

var _ skywatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of skywatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

var _ skywatch.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of skywatch.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(content []byte) (string, error)
}

func (t *TextExtractor) ExtractText(content []byte) (string, error) {
	return t.ExtractTextFn(content)
}

var _ skywatch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of skywatch.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, doc *skywatch.Document, text string) (*skywatch.Extraction, error)
}

func (e *Extractor) Extract(ctx context.Context, doc *skywatch.Document, text string) (*skywatch.Extraction, error) {
	return e.ExtractFn(ctx, doc, text)
}

var _ skywatch.Geocoder = (*Geocoder)(nil)

// Geocoder is a mock implementation of skywatch.Geocoder.
type Geocoder struct {
	GeocodeFn func(ctx context.Context, town, area string) (skywatch.Coordinates, error)
}

func (g *Geocoder) Geocode(ctx context.Context, town, area string) (skywatch.Coordinates, error) {
	return g.GeocodeFn(ctx, town, area)
}

var _ skywatch.Ledger = (*Ledger)(nil)

// Ledger is a mock implementation of skywatch.Ledger.
type Ledger struct {
	StatusFn func(ctx context.Context, url string) (skywatch.Status, error)
	RecordFn func(ctx context.Context, doc *skywatch.Document) error
}

func (l *Ledger) Status(ctx context.Context, url string) (skywatch.Status, error) {
	return l.StatusFn(ctx, url)
}

func (l *Ledger) Record(ctx context.Context, doc *skywatch.Document) error {
	return l.RecordFn(ctx, doc)
}
