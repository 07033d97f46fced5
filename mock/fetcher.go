package mock

import (
	"context"

	"github.com/fwojciec/roster"
)

var _ roster.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of roster.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*roster.Response, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*roster.Response, error) {
	return f.FetchFn(ctx, url)
}
