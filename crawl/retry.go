package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/roster"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 500ms, 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second}
}

// FetchWithRetry fetches a URL, retrying transport failures with the
// default backoff. Responses are never retried, whatever their status.
func FetchWithRetry(ctx context.Context, fetcher roster.Fetcher, url string, logger LogFunc) (*roster.Response, error) {
	return FetchWithRetryDelays(ctx, fetcher, url, logger, DefaultRetryDelays())
}

// FetchWithRetryDelays is like FetchWithRetry but allows configurable delays.
// It makes at most len(delays)+1 attempts.
func FetchWithRetryDelays(ctx context.Context, fetcher roster.Fetcher, url string, logger LogFunc, delays []time.Duration) (*roster.Response, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := fetcher.Fetch(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
