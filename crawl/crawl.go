// Package crawl orchestrates extraction runs. It fetches listing, API and
// profile pages, runs the extraction cascades over them, enriches records
// from their profile pages and hands the results to a record writer.
package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/record"
)

// MaxRecordsLimit is the largest record budget a run accepts.
const MaxRecordsLimit = 10000

// Processor runs the extraction pipeline over a set of entry points.
// A Processor is good for one run at a time.
type Processor struct {
	Fetcher     roster.Fetcher
	Parser      roster.DocumentParser
	Normalizer  *record.Normalizer
	Records     roster.RecordWriter
	Sitemaps    roster.SitemapService
	RateLimiter roster.DomainLimiter

	// Enricher fills listing records in from their profile pages when
	// Enrich is set.
	Enricher *Enricher
	Enrich   bool

	// IncludeReviews collects reviews from profile pages found in sitemaps.
	IncludeReviews bool

	// MaxRecords stops the run once that many records were written.
	// Zero means no limit.
	MaxRecords int

	// MaxPages bounds the number of pages fetched. Zero means no limit.
	MaxPages int

	// UseAPI follows internal API endpoints referenced by listing pages.
	UseAPI bool

	// UseHTMLFallback extracts cards from listing markup when the page
	// carries no usable JSON.
	UseHTMLFallback bool

	// UseSitemaps adds the profile pages listed in each entry point's
	// sitemaps.
	UseSitemaps bool

	RetryDelays []time.Duration

	// Seen deduplicates records by profile URL. A fresh set is created
	// for the run when nil.
	Seen *SeenSet

	Logger   *slog.Logger
	Progress ProgressFunc
	Now      func() time.Time
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type     ProgressType
	URL      string
	Strategy roster.Strategy
	Records  int
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressPage ProgressType = iota
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// Run processes every start URL as a listing page, following pagination and
// referenced API endpoints, then the profile pages discovered from sitemaps.
// Pages that fail or are blocked are skipped. Run stops early when the
// record or page budget is spent and returns an error only when the
// record writer fails or ctx is done.
func (p *Processor) Run(ctx context.Context, startURLs []string) (roster.Summary, error) {
	r := &run{
		p:       p,
		stats:   roster.NewStats(p.now()),
		seen:    p.Seen,
		visited: NewSeenSet(0),
		log:     p.logger(),
	}
	if r.seen == nil {
		r.seen = NewSeenSet(0)
	}

	err := r.crawl(ctx, startURLs)
	summary := r.stats.Finish(p.now())
	r.progress(ProgressEvent{Type: ProgressFinished, Records: summary.TotalRecords})
	return summary, err
}

func (p *Processor) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// run holds the state of one Processor.Run call.
type run struct {
	p       *Processor
	stats   *roster.Stats
	seen    *SeenSet
	visited *SeenSet
	pages   int
	log     *slog.Logger
}

func (r *run) crawl(ctx context.Context, startURLs []string) error {
	var profileURLs []string
	if r.p.UseSitemaps && r.p.Sitemaps != nil {
		for _, start := range startURLs {
			urls, err := r.p.Sitemaps.DiscoverURLs(ctx, siteRoot(start), roster.ProfilePathFilter())
			if err != nil {
				r.log.Warn("sitemap discovery failed", "url", start, "err", err)
				continue
			}
			profileURLs = append(profileURLs, urls...)
		}
	}

	for _, start := range startURLs {
		if err := r.follow(ctx, start, r.listingPage); err != nil {
			return err
		}
	}
	for _, u := range profileURLs {
		if r.done() {
			break
		}
		if err := r.profilePage(ctx, u); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// done reports whether the record or page budget is spent.
func (r *run) done() bool {
	if r.p.MaxRecords > 0 && r.stats.TotalRecords() >= r.p.MaxRecords {
		return true
	}
	return r.p.MaxPages > 0 && r.pages >= r.p.MaxPages
}

// follow processes a chain of pages starting at rawURL, each page naming
// the next one, until the chain ends, revisits a URL or the budget is spent.
func (r *run) follow(ctx context.Context, rawURL string, page func(context.Context, string) (string, error)) error {
	for rawURL != "" && !r.done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.visited.Add(rawURL) {
			return nil
		}
		next, err := page(ctx, rawURL)
		if err != nil {
			return err
		}
		rawURL = next
	}
	return nil
}

// listingPage extracts the records of one listing page, then follows the
// API endpoints it references, and returns the next listing page.
func (r *run) listingPage(ctx context.Context, rawURL string) (string, error) {
	doc, err := r.document(ctx, rawURL)
	if err != nil {
		return "", r.skip(ctx, rawURL, err)
	}

	recs, strategy := ExtractListing(doc, r.p.Normalizer, r.stats, r.p.UseHTMLFallback)
	r.page(rawURL, strategy, len(recs))
	if err := r.handle(ctx, recs); err != nil {
		return "", err
	}

	if r.p.UseAPI {
		for _, api := range doc.APIURLs() {
			if err := r.follow(ctx, api, r.apiPage); err != nil {
				return "", err
			}
		}
	}
	return doc.NextPageURL(), nil
}

// apiPage extracts the records of one API payload and returns the URL of
// the payload's next page.
func (r *run) apiPage(ctx context.Context, rawURL string) (string, error) {
	resp, err := r.fetch(ctx, rawURL)
	if err != nil {
		return "", r.skip(ctx, rawURL, err)
	}
	var v any
	if err := json.Unmarshal([]byte(resp.Body), &v); err != nil {
		return "", r.skip(ctx, rawURL, roster.Errorf(roster.EINVALID, "API response is not JSON: %v", err))
	}

	base := baseOf(resp, rawURL)
	recs := ExtractAPI(v, base, r.p.Normalizer, r.stats)
	r.page(rawURL, roster.StrategyAPI, len(recs))
	if err := r.handle(ctx, recs); err != nil {
		return "", err
	}
	return record.NextPageURL(v, base), nil
}

// profilePage extracts the profile record of a page found in a sitemap.
func (r *run) profilePage(ctx context.Context, rawURL string) error {
	if r.seen.Has(rawURL) {
		return nil
	}
	doc, err := r.document(ctx, rawURL)
	if err != nil {
		return r.skip(ctx, rawURL, err)
	}

	rec := ExtractProfile(doc, rawURL, r.p.Normalizer, r.p.IncludeReviews)
	if rec.Name == "" {
		rec.Name = roster.UnknownName
	}
	rec.ScrapedAt = r.p.now()
	r.page(rawURL, roster.StrategyNone, 1)
	return r.write(ctx, rec, r.seen.Add(rawURL))
}

// handle deduplicates recs by profile URL, trims them to the remaining
// record budget, enriches them when enabled and writes them out.
func (r *run) handle(ctx context.Context, recs []*roster.Record) error {
	fresh := make([]*roster.Record, 0, len(recs))
	for _, rec := range recs {
		if rec.ProfileURL != "" && !r.seen.Add(rec.ProfileURL) {
			continue
		}
		fresh = append(fresh, rec)
	}

	if limit := r.p.MaxRecords; limit > 0 {
		remaining := limit - r.stats.TotalRecords()
		if remaining <= 0 {
			return nil
		}
		if len(fresh) > remaining {
			fresh = fresh[:remaining]
		}
	}

	if r.p.Enrich && r.p.Enricher != nil {
		fresh = r.p.Enricher.EnrichAll(ctx, fresh, r.stats)
	}

	for _, rec := range fresh {
		if err := r.write(ctx, rec, true); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) write(ctx context.Context, rec *roster.Record, fresh bool) error {
	if !fresh {
		return nil
	}
	if err := rec.Validate(); err != nil {
		r.log.Warn("dropping invalid record", "url", rec.ProfileURL, "err", err)
		return nil
	}
	if err := r.p.Records.WriteRecord(ctx, rec); err != nil {
		return fmt.Errorf("write record %s: %w", rec.ProfileURL, err)
	}
	r.stats.AddRecords(1)
	return nil
}

// fetch retrieves rawURL, pacing requests per domain. Blocked responses
// yield EBLOCKED and other non-2xx statuses EUNAVAILABLE.
func (r *run) fetch(ctx context.Context, rawURL string) (*roster.Response, error) {
	if r.p.RateLimiter != nil {
		if err := r.p.RateLimiter.Wait(ctx, hostOf(rawURL)); err != nil {
			return nil, err
		}
	}
	r.pages++

	delays := r.p.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	resp, err := FetchWithRetryDelays(ctx, r.p.Fetcher, rawURL, func(format string, args ...any) {
		r.log.Debug(fmt.Sprintf(format, args...))
	}, delays)
	if err != nil {
		return nil, err
	}
	if resp.Blocked() {
		r.stats.AddBlocked()
		return nil, roster.Errorf(roster.EBLOCKED, "blocked: %s (status %d)", rawURL, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, roster.Errorf(roster.EUNAVAILABLE, "%s returned status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (r *run) document(ctx context.Context, rawURL string) (roster.Document, error) {
	resp, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return r.p.Parser.Parse(resp.Body, baseOf(resp, rawURL))
}

// skip logs a page that could not be processed. It returns an error only
// when ctx is done, which ends the run.
func (r *run) skip(ctx context.Context, rawURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if roster.ErrorCode(err) == roster.EBLOCKED {
		r.log.Warn("page blocked", "url", rawURL)
	} else {
		r.log.Warn("page skipped", "url", rawURL, "err", err)
	}
	r.progress(ProgressEvent{Type: ProgressSkipped, URL: rawURL, Error: err})
	return nil
}

func (r *run) page(rawURL string, strategy roster.Strategy, n int) {
	r.stats.AddPage(n)
	r.log.Debug("page processed", "url", rawURL, "strategy", string(strategy), "records", n)
	r.progress(ProgressEvent{Type: ProgressPage, URL: rawURL, Strategy: strategy, Records: n})
}

func (r *run) progress(event ProgressEvent) {
	if r.p.Progress != nil {
		r.p.Progress(event)
	}
}

func baseOf(resp *roster.Response, rawURL string) string {
	if resp.URL != "" {
		return resp.URL
	}
	return rawURL
}

// siteRoot returns the scheme and host of rawURL.
func siteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
