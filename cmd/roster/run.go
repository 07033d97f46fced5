package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/crawl"
	"github.com/fwojciec/roster/fs"
	"github.com/fwojciec/roster/goquery"
	rosterhttp "github.com/fwojciec/roster/http"
	"github.com/fwojciec/roster/record"
	rosterslog "github.com/fwojciec/roster/slog"
	"github.com/fwojciec/roster/sqlite"
)

// DefaultOutputDir is used when neither --out nor --db is given.
const DefaultOutputDir = "output"

// progressURLWidth bounds the URL column of progress lines.
const progressURLWidth = 80

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	logger := deps.Logger
	startURLs := c.StartURLs()
	domain := c.SourceDomainOrDefault()

	out, err := c.openOutput()
	if err != nil {
		return err
	}

	fetcher := rosterslog.NewLoggingFetcher(deps.Fetcher, logger)
	parser := goquery.NewParser(domain)
	normalizer := record.NewNormalizer(domain)
	if deps.Now != nil {
		parser.Now = deps.Now
		normalizer.Now = deps.Now
	}

	batchPause := c.BatchPause
	if batchPause == 0 {
		batchPause = -1
	}

	p := &crawl.Processor{
		Fetcher:     fetcher,
		Parser:      parser,
		Normalizer:  normalizer,
		Records:     rosterslog.NewLoggingRecordWriter(out.records, logger),
		Sitemaps:    rosterslog.NewLoggingSitemapService(rosterhttp.NewSitemapService(fetcher), logger),
		RateLimiter: crawl.NewDomainLimiter(c.RPS),
		Enricher: &crawl.Enricher{
			Fetcher:        fetcher,
			Parser:         parser,
			Normalizer:     normalizer,
			RateLimiter:    crawl.NewDomainLimiter(c.RPS),
			IncludeReviews: c.IncludeReviews,
			BatchSize:      c.BatchSize,
			BatchPause:     batchPause,
			Logger:         logger,
		},
		Enrich:          c.IncludeContact || c.IncludeReviews,
		IncludeReviews:  c.IncludeReviews,
		MaxRecords:      c.MaxRecords,
		MaxPages:        c.MaxPages,
		UseAPI:          c.API,
		UseHTMLFallback: c.HTMLFallback,
		UseSitemaps:     c.Sitemaps,
		Logger:          logger,
		Now:             deps.Now,
		Progress: func(event crawl.ProgressEvent) {
			fmt.Fprintln(deps.Stdout, crawl.FormatProgress(event, progressURLWidth))
		},
	}

	logger.Info("starting run",
		"urls", startURLs,
		"source_domain", domain,
		"max_records", c.MaxRecords,
		"api", c.API,
		"html_fallback", c.HTMLFallback,
		"sitemaps", c.Sitemaps,
	)

	summary, runErr := p.Run(deps.Ctx, startURLs)

	// Interrupted runs keep what they wrote. Only a failing sink discards
	// the partial dataset.
	keep := runErr == nil || errors.Is(runErr, context.Canceled)
	if err := out.close(context.WithoutCancel(deps.Ctx), summary, keep); err != nil && runErr == nil {
		runErr = err
	}

	fmt.Fprintln(deps.Stdout)
	fmt.Fprint(deps.Stdout, FormatSummary(summary))

	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(runErr))
	}
	return runErr
}

// output fans records out to every configured sink.
type output struct {
	records   multiWriter
	summaries []roster.SummaryWriter
	closers   []func(keep bool) error
}

func (c *RunCmd) openOutput() (*output, error) {
	out := &output{}

	if c.DB != "" {
		db := sqlite.NewDB(c.DB)
		if err := db.Open(); err != nil {
			return nil, fmt.Errorf("open database at %q: %w", c.DB, err)
		}
		out.records = append(out.records, sqlite.NewRecordService(db))
		out.summaries = append(out.summaries, sqlite.NewRunService(db))
		out.closers = append(out.closers, func(bool) error { return db.Close() })
	}

	if c.Out != "" || c.DB == "" {
		dir := c.Out
		if dir == "" {
			dir = DefaultOutputDir
		}
		w := fs.NewWriter(dir)
		if err := w.Open(); err != nil {
			out.close(context.Background(), roster.Summary{}, false)
			return nil, fmt.Errorf("open output directory %q: %w", dir, err)
		}
		out.records = append(out.records, w)
		out.summaries = append(out.summaries, w)
		out.closers = append(out.closers, func(keep bool) error {
			if keep {
				return w.Commit()
			}
			return w.Abort()
		})
	}

	return out, nil
}

// close saves the summary when the output is kept, then releases every
// sink. The first error wins.
func (o *output) close(ctx context.Context, summary roster.Summary, keep bool) error {
	var firstErr error
	if keep && !summary.FinishedAt.IsZero() {
		for _, s := range o.summaries {
			if err := s.SaveSummary(ctx, summary); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("save summary: %w", err)
			}
		}
	}
	for _, closeFn := range o.closers {
		if err := closeFn(keep); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// multiWriter writes each record to every writer in order.
type multiWriter []roster.RecordWriter

func (m multiWriter) WriteRecord(ctx context.Context, rec *roster.Record) error {
	for _, w := range m {
		if err := w.WriteRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
