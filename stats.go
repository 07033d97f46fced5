package roster

import (
	"context"
	"sync"
	"time"
)

// Strategy identifies which extraction path produced a set of records.
type Strategy string

// Extraction strategies, in the order a listing page tries them.
const (
	StrategyNone       Strategy = ""
	StrategyAPI        Strategy = "api"
	StrategyEmbedded   Strategy = "embedded_json"
	StrategyStructured Strategy = "json_ld"
	StrategyHTML       Strategy = "html"
)

// Summary is a point-in-time copy of the run counters.
type Summary struct {
	TotalRecords          int       `json:"totalRecords"`
	PagesProcessed        int       `json:"pagesProcessed"`
	EmptyPages            int       `json:"emptyPages"`
	APIExtractions        int       `json:"apiExtractions"`
	EmbeddedExtractions   int       `json:"embeddedJsonExtractions"`
	StructuredExtractions int       `json:"jsonLdExtractions"`
	HTMLExtractions       int       `json:"htmlExtractions"`
	ProfileEnrichments    int       `json:"profileEnrichments"`
	BlockedRequests       int       `json:"blockedRequests"`
	StartedAt             time.Time `json:"startedAt"`
	FinishedAt            time.Time `json:"finishedAt"`
}

// Stats accumulates run counters. It is passed explicitly to every call that
// counts something and is safe for concurrent use.
type Stats struct {
	mu sync.Mutex
	s  Summary
}

// NewStats returns a Stats whose run started at the given time.
func NewStats(startedAt time.Time) *Stats {
	return &Stats{s: Summary{StartedAt: startedAt}}
}

// AddExtracted counts n records produced by the given strategy.
func (s *Stats) AddExtracted(strategy Strategy, n int) {
	if s == nil || n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch strategy {
	case StrategyAPI:
		s.s.APIExtractions += n
	case StrategyEmbedded:
		s.s.EmbeddedExtractions += n
	case StrategyStructured:
		s.s.StructuredExtractions += n
	case StrategyHTML:
		s.s.HTMLExtractions += n
	}
}

// AddPage counts a processed page. Pages that yielded no records are
// also counted as empty.
func (s *Stats) AddPage(extracted int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.PagesProcessed++
	if extracted == 0 {
		s.s.EmptyPages++
	}
}

// AddRecords counts records handed to the output sink.
func (s *Stats) AddRecords(n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.s.TotalRecords += n
	s.mu.Unlock()
}

// AddEnriched counts records that went through profile enrichment.
func (s *Stats) AddEnriched(n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.s.ProfileEnrichments += n
	s.mu.Unlock()
}

// AddBlocked counts a request that hit anti-bot protection.
func (s *Stats) AddBlocked() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.s.BlockedRequests++
	s.mu.Unlock()
}

// TotalRecords returns the number of records written so far.
func (s *Stats) TotalRecords() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.TotalRecords
}

// Finish stamps the finish time and returns the final summary.
func (s *Stats) Finish(finishedAt time.Time) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.FinishedAt = finishedAt
	return s.s
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

// SummaryWriter persists the summary of a finished run.
type SummaryWriter interface {
	SaveSummary(ctx context.Context, s Summary) error
}
