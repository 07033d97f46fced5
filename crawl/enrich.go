package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/record"
	"golang.org/x/sync/errgroup"
)

// Enrichment defaults.
const (
	DefaultBatchSize  = 5
	DefaultBatchPause = 200 * time.Millisecond
)

// Enricher fills listing records in from their profile pages.
type Enricher struct {
	Fetcher    roster.Fetcher
	Parser     roster.DocumentParser
	Normalizer *record.Normalizer

	// RateLimiter, when set, paces profile fetches per domain.
	RateLimiter roster.DomainLimiter

	// IncludeReviews collects structured-data reviews from profile pages.
	IncludeReviews bool

	// BatchSize is the number of profile pages fetched concurrently.
	// Defaults to DefaultBatchSize.
	BatchSize int

	// BatchPause is the wait between consecutive batches. A negative
	// value disables the pause. Defaults to DefaultBatchPause.
	BatchPause time.Duration

	// RetryDelays are the backoff delays for transport failures.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

func (e *Enricher) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// Enrich fetches the profile page of rec and returns a copy of rec with
// every field the page defines filled in. rec itself is never modified.
// A page behind bot protection yields an EBLOCKED error and any other
// non-200 status an EUNAVAILABLE error.
func (e *Enricher) Enrich(ctx context.Context, rec *roster.Record) (*roster.Record, error) {
	if rec.ProfileURL == "" {
		return nil, roster.Errorf(roster.EINVALID, "record %q has no profile URL", rec.Name)
	}

	if e.RateLimiter != nil {
		if err := e.RateLimiter.Wait(ctx, hostOf(rec.ProfileURL)); err != nil {
			return nil, err
		}
	}

	delays := e.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	log := e.logger()
	resp, err := FetchWithRetryDelays(ctx, e.Fetcher, rec.ProfileURL, func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}, delays)
	if err != nil {
		return nil, err
	}
	if resp.Blocked() {
		return nil, roster.Errorf(roster.EBLOCKED, "profile page blocked: %s (status %d)", rec.ProfileURL, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, roster.Errorf(roster.EUNAVAILABLE, "profile page %s returned status %d", rec.ProfileURL, resp.StatusCode)
	}

	base := resp.URL
	if base == "" {
		base = rec.ProfileURL
	}
	doc, err := e.Parser.Parse(resp.Body, base)
	if err != nil {
		return nil, err
	}

	out := rec.Clone()
	record.Merge(out, ExtractProfile(doc, rec.ProfileURL, e.Normalizer, e.IncludeReviews))
	return out, nil
}

// EnrichAll enriches recs in fixed-size batches. A batch runs to
// completion before the next one starts. Records whose profile page fails
// keep their listing data. The result has the same order and length as recs.
func (e *Enricher) EnrichAll(ctx context.Context, recs []*roster.Record, stats *roster.Stats) []*roster.Record {
	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	pause := e.BatchPause
	if pause == 0 {
		pause = DefaultBatchPause
	}
	log := e.logger()

	out := make([]*roster.Record, len(recs))
	copy(out, recs)

	for start := 0; start < len(recs); start += size {
		end := min(start+size, len(recs))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				rec := recs[i]
				if rec == nil || rec.ProfileURL == "" {
					return nil
				}
				enriched, err := e.Enrich(ctx, rec)
				switch {
				case roster.ErrorCode(err) == roster.EBLOCKED:
					stats.AddBlocked()
					log.Warn("profile page blocked", "url", rec.ProfileURL)
				case err != nil:
					log.Debug("profile enrichment failed", "url", rec.ProfileURL, "err", err)
				default:
					out[i] = enriched
					stats.AddEnriched(1)
				}
				return nil
			})
		}
		_ = g.Wait()

		if end < len(recs) && pause > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(pause):
			}
		}
	}
	return out
}
