// Package slog provides logging decorators for the roster interfaces,
// built on log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/roster"
)

// Ensure LoggingFetcher implements roster.Fetcher.
var _ roster.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging. Successful fetches are
// logged at debug level; failures and blocked responses at warn level.
type LoggingFetcher struct {
	next   roster.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next roster.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *roster.Response, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		switch {
		case err != nil:
			f.logger.Warn("fetch", append(attrs, "err", err)...)
		case resp.Blocked():
			f.logger.Warn("fetch blocked", append(attrs, "status", resp.StatusCode)...)
		default:
			f.logger.Debug("fetch", append(attrs, "status", resp.StatusCode, "bytes", len(resp.Body))...)
		}
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
