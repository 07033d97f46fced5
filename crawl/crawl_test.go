package crawl_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/crawl"
	"github.com/fwojciec/roster/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site serves canned responses and parsed documents keyed by URL.
type site struct {
	mu        sync.Mutex
	responses map[string]*roster.Response
	docs      map[string]roster.Document
	fetched   []string
}

func newSite() *site {
	return &site{
		responses: make(map[string]*roster.Response),
		docs:      make(map[string]roster.Document),
	}
}

func (s *site) page(url string, doc roster.Document) {
	s.responses[url] = &roster.Response{URL: url, StatusCode: 200, Body: "<html></html>"}
	s.docs[url] = doc
}

func (s *site) status(url string, code int) {
	s.responses[url] = &roster.Response{URL: url, StatusCode: code}
}

func (s *site) body(url string, code int, body string) {
	s.responses[url] = &roster.Response{URL: url, StatusCode: code, Body: body}
}

func (s *site) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*roster.Response, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.fetched = append(s.fetched, url)
			if resp, ok := s.responses[url]; ok {
				return resp, nil
			}
			return &roster.Response{URL: url, StatusCode: 404}, nil
		},
	}
}

func (s *site) parser() *mock.DocumentParser {
	return &mock.DocumentParser{
		ParseFn: func(_ string, baseURL string) (roster.Document, error) {
			if doc, ok := s.docs[baseURL]; ok {
				return doc, nil
			}
			return &mock.Document{URLFn: func() string { return baseURL }}, nil
		},
	}
}

func (s *site) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetched...)
}

// collector is a record writer that keeps what it was given.
type collector struct {
	mu   sync.Mutex
	recs []*roster.Record
}

func (c *collector) writer() *mock.RecordWriter {
	return &mock.RecordWriter{
		WriteRecordFn: func(_ context.Context, rec *roster.Record) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.recs = append(c.recs, rec)
			return nil
		},
	}
}

func (c *collector) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, r := range c.recs {
		out = append(out, r.Name)
	}
	return out
}

func card(slug string) *roster.Record {
	return &roster.Record{Name: slug, ProfileURL: "https://site.test/attorney/" + slug, ScrapedAt: fixedNow}
}

func cardsPage(next string, cards ...*roster.Record) *mock.Document {
	return &mock.Document{
		CardsFn:       func() []*roster.Record { return cards },
		NextPageURLFn: func() string { return next },
	}
}

func newProcessor(s *site, out *collector) *crawl.Processor {
	return &crawl.Processor{
		Fetcher:         s.fetcher(),
		Parser:          s.parser(),
		Normalizer:      newNormalizer(),
		Records:         out.writer(),
		UseHTMLFallback: true,
		RetryDelays:     []time.Duration{},
		Now:             func() time.Time { return fixedNow },
	}
}

const (
	page1 = "https://site.test/search?page=1"
	page2 = "https://site.test/search?page=2"
)

func TestProcessor_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes listing records across pages without duplicates", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage(page2, card("a"), card("b")))
		s.page(page2, cardsPage("", card("b"), card("c")))
		var out collector

		summary, err := newProcessor(s, &out).Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, out.names())
		assert.Equal(t, 3, summary.TotalRecords)
		assert.Equal(t, 2, summary.PagesProcessed)
		assert.Equal(t, 4, summary.HTMLExtractions)
		assert.Equal(t, fixedNow, summary.StartedAt)
		assert.Equal(t, fixedNow, summary.FinishedAt)
	})

	t.Run("stops at the record budget", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage(page2, card("a"), card("b"), card("c")))
		s.page(page2, cardsPage("", card("d")))
		var out collector
		p := newProcessor(s, &out)
		p.MaxRecords = 2

		summary, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, out.names())
		assert.Equal(t, 2, summary.TotalRecords)
		assert.Equal(t, []string{page1}, s.requests())
	})

	t.Run("stops at the page budget", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage(page2, card("a")))
		s.page(page2, cardsPage("", card("b")))
		var out collector
		p := newProcessor(s, &out)
		p.MaxPages = 1

		_, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out.names())
	})

	t.Run("pagination loops end", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage(page1, card("a")))
		var out collector

		_, err := newProcessor(s, &out).Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{page1}, s.requests())
	})

	t.Run("follows API endpoints and their pagination", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, &mock.Document{
			APIURLsFn: func() []string { return []string{"https://site.test/api/lawyers?page=1"} },
		})
		s.body("https://site.test/api/lawyers?page=1", 200,
			`{"results":[{"name":"Jane Doe","profileUrl":"/attorney/jane-doe"}],"next":"/api/lawyers?page=2"}`)
		s.body("https://site.test/api/lawyers?page=2", 200, `{"results":[]}`)
		var out collector
		p := newProcessor(s, &out)
		p.UseAPI = true

		summary, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"Jane Doe"}, out.names())
		assert.Equal(t, 1, summary.APIExtractions)
		assert.Equal(t, 3, summary.PagesProcessed)
		assert.Equal(t, 2, summary.EmptyPages)
		assert.Equal(t, []string{
			page1,
			"https://site.test/api/lawyers?page=1",
			"https://site.test/api/lawyers?page=2",
		}, s.requests())
	})

	t.Run("API endpoints ignored unless enabled", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, &mock.Document{
			APIURLsFn: func() []string { return []string{"https://site.test/api/lawyers"} },
		})
		var out collector

		_, err := newProcessor(s, &out).Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{page1}, s.requests())
	})

	t.Run("non-JSON API response is skipped", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, &mock.Document{
			APIURLsFn: func() []string { return []string{"https://site.test/api/lawyers"} },
		})
		s.body("https://site.test/api/lawyers", 200, "<html>not json</html>")
		var out collector
		p := newProcessor(s, &out)
		p.UseAPI = true
		var skipped []string
		p.Progress = func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressSkipped {
				skipped = append(skipped, e.URL)
			}
		}

		_, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"https://site.test/api/lawyers"}, skipped)
	})

	t.Run("blocked listing page is counted and skipped", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.status(page1, 403)
		s.page(page2, cardsPage("", card("a")))
		var out collector

		summary, err := newProcessor(s, &out).Run(context.Background(), []string{page1, page2})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.BlockedRequests)
		assert.Equal(t, 1, summary.PagesProcessed)
		assert.Equal(t, []string{"a"}, out.names())
	})

	t.Run("transport failures are skipped", func(t *testing.T) {
		t.Parallel()
		var out collector
		p := newProcessor(newSite(), &out)
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (*roster.Response, error) {
				return nil, errors.New("connection refused")
			},
		}

		summary, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Zero(t, summary.PagesProcessed)
	})

	t.Run("enriches listing records", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", card("jane-doe"), card("john-roe")))
		s.page(profilePage, profileDoc(t))
		s.status("https://site.test/attorney/john-roe", 403)
		var out collector
		p := newProcessor(s, &out)
		p.Enrich = true
		p.Enricher = newEnricher(s)

		summary, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		require.Len(t, out.recs, 2)
		assert.Equal(t, "Structured bio", out.recs[0].Bio)
		assert.Equal(t, "jane-doe", out.recs[0].Name, "listing name is kept")
		assert.Equal(t, card("john-roe"), out.recs[1])
		assert.Equal(t, 1, summary.ProfileEnrichments)
		assert.Equal(t, 1, summary.BlockedRequests)
	})

	t.Run("sitemap profile pages", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", card("a")))
		s.page(profilePage, profileDoc(t))
		var out collector
		var sitemapBase string
		var sitemapFilter *roster.URLFilter
		p := newProcessor(s, &out)
		p.UseSitemaps = true
		p.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, baseURL string, filter *roster.URLFilter) ([]string, error) {
				sitemapBase, sitemapFilter = baseURL, filter
				return []string{profilePage, "https://site.test/attorney/a"}, nil
			},
		}

		summary, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, "https://site.test", sitemapBase)
		require.NotNil(t, sitemapFilter)
		assert.True(t, sitemapFilter.Match(profilePage))
		require.Len(t, out.recs, 2)
		assert.Equal(t, "Jane Doe", out.recs[1].Name)
		assert.Equal(t, profilePage, out.recs[1].ProfileURL)
		assert.Equal(t, fixedNow, out.recs[1].ScrapedAt)
		assert.Equal(t, 2, summary.TotalRecords)
		assert.NotContains(t, s.requests(), "https://site.test/attorney/a", "already seen on the listing")
	})

	t.Run("sitemap failure does not stop the run", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", card("a")))
		var out collector
		p := newProcessor(s, &out)
		p.UseSitemaps = true
		p.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *roster.URLFilter) ([]string, error) {
				return nil, errors.New("no sitemap")
			},
		}

		_, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out.names())
	})

	t.Run("invalid records are dropped", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", &roster.Record{Name: "Relative", ProfileURL: "/attorney/x"}, card("a")))
		var out collector

		summary, err := newProcessor(s, &out).Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out.names())
		assert.Equal(t, 1, summary.TotalRecords)
	})

	t.Run("writer failure ends the run", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage(page2, card("a")))
		s.page(page2, cardsPage("", card("b")))
		var out collector
		p := newProcessor(s, &out)
		p.Records = &mock.RecordWriter{
			WriteRecordFn: func(_ context.Context, _ *roster.Record) error {
				return errors.New("disk full")
			},
		}

		_, err := p.Run(context.Background(), []string{page1})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, []string{page1}, s.requests())
	})

	t.Run("paces every fetch by host", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", card("a")))
		var out collector
		var domains []string
		p := newProcessor(s, &out)
		p.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				domains = append(domains, domain)
				return nil
			},
		}

		_, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		assert.Equal(t, []string{"site.test"}, domains)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", card("a")))
		var out collector
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newProcessor(s, &out).Run(ctx, []string{page1})

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, out.names())
	})

	t.Run("progress events", func(t *testing.T) {
		t.Parallel()
		s := newSite()
		s.page(page1, cardsPage("", card("a"), card("b")))
		var out collector
		var events []crawl.ProgressEvent
		p := newProcessor(s, &out)
		p.Progress = func(e crawl.ProgressEvent) { events = append(events, e) }

		_, err := p.Run(context.Background(), []string{page1})

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, crawl.ProgressEvent{Type: crawl.ProgressPage, URL: page1, Strategy: roster.StrategyHTML, Records: 2}, events[0])
		assert.Equal(t, crawl.ProgressEvent{Type: crawl.ProgressFinished, Records: 2}, events[1])
	})
}
