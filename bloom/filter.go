// Package bloom provides document-URL deduplication for discovery using
// Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter tracks document URLs seen during discovery. It answers "have I
// seen this URL" with possible false positives and no false negatives,
// which is the right trade-off for skipping duplicate listing entries.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URLs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen records the URL and reports whether it had already been recorded.
func (f *Filter) Seen(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of URLs recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
