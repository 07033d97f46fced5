package crawl

import (
	"net/url"
	"sync"

	"github.com/fwojciec/roster/bloom"
)

// seenFalsePositiveRate keeps accidental drops of unseen profiles negligible
// at directory scale.
const seenFalsePositiveRate = 1e-6

// SeenSet remembers URLs already handled during a run. It is safe for
// concurrent use.
type SeenSet struct {
	mu sync.Mutex
	f  *bloom.Filter
}

// NewSeenSet returns a SeenSet sized for n expected URLs.
func NewSeenSet(n uint) *SeenSet {
	if n == 0 {
		n = 10000
	}
	return &SeenSet{f: bloom.NewFilter(n, seenFalsePositiveRate)}
}

// Add records rawURL and reports whether it was new. URLs differing only
// in their fragment are the same URL.
func (s *SeenSet) Add(rawURL string) bool {
	key := seenKey(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.f.TestAndAdd(key)
}

// Has reports whether rawURL was added before.
func (s *SeenSet) Has(rawURL string) bool {
	key := seenKey(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Test(key)
}

func seenKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
