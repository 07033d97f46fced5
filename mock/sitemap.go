package mock

import (
	"context"

	"github.com/fwojciec/roster"
)

var _ roster.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of roster.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *roster.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *roster.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
