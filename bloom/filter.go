// Package bloom provides probabilistic set membership for profile URLs
// using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter over strings. It is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter returns a Filter sized for n expected keys at the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add inserts key.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test reports whether key might have been added. False positives are
// possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// TestAndAdd inserts key and reports whether it might have been present
// before the call.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
