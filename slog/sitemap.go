package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/roster"
)

var _ roster.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs each sitemap discovery: how many URLs it found
// at info level, or the failure at warn level.
type LoggingSitemapService struct {
	next   roster.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next roster.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *roster.URLFilter) ([]string, error) {
	begin := time.Now()
	urls, err := s.next.DiscoverURLs(ctx, baseURL, filter)

	attrs := []any{"url", baseURL, "filtered", filter != nil, "duration", time.Since(begin)}
	if err != nil {
		s.logger.Warn("sitemap discovery", append(attrs, "err", err)...)
		return urls, err
	}
	s.logger.Info("sitemap discovery", append(attrs, "count", len(urls))...)
	return urls, nil
}
