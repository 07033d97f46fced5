// Package http provides net/http implementations of roster.Fetcher and
// roster.SitemapService.
package http

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fwojciec/roster"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 20 * time.Second

// DefaultMaxBodySize bounds how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgents are rotated across requests.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// DefaultHeaders are sent with every request.
var DefaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Ensure Fetcher implements roster.Fetcher at compile time.
var _ roster.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages with plain HTTP GET requests. It does not execute
// JavaScript.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgents  []string
	headers     map[string]string
	maxBodySize int64
	next        atomic.Uint64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient sets the underlying HTTP client. The client's own timeout is
// replaced by the fetcher's.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgents sets the user agents rotated across requests.
func WithUserAgents(agents ...string) Option {
	return func(f *Fetcher) {
		f.userAgents = agents
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(f *Fetcher) {
		f.headers[key] = value
	}
}

// WithMaxBodySize bounds how many bytes of a body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgents:  DefaultUserAgents,
		headers:     make(map[string]string, len(DefaultHeaders)),
		maxBodySize: DefaultMaxBodySize,
	}
	for k, v := range DefaultHeaders {
		f.headers[k] = v
	}
	for _, opt := range opts {
		opt(f)
	}

	client := &http.Client{}
	if f.client != nil {
		*client = *f.client
	}
	client.Timeout = f.timeout
	f.client = client

	return f
}

// Fetch retrieves url. Every status is returned as a Response, together
// with the URL the request ended up at after redirects. Errors are
// reserved for transport failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*roster.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, roster.Errorf(roster.EINVALID, "invalid URL %q: %v", url, err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if ua := f.userAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	return &roster.Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

func (f *Fetcher) userAgent() string {
	if len(f.userAgents) == 0 {
		return ""
	}
	i := f.next.Add(1) - 1
	return f.userAgents[i%uint64(len(f.userAgents))]
}
