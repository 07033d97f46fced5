package http

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/roster"
)

// Ensure SitemapService implements roster.SitemapService.
var _ roster.SitemapService = (*SitemapService)(nil)

// DefaultSitemapPaths are tried in order when robots.txt names no sitemap.
var DefaultSitemapPaths = []string{"/sitemap.xml", "/sitemaps/sitemap.xml", "/sitemap_index.xml"}

// SitemapService discovers URLs from website sitemaps. Requests go through
// a roster.Fetcher so they carry the same headers and pacing as page fetches.
type SitemapService struct {
	fetcher roster.Fetcher

	// Paths are the conventional sitemap locations tried when robots.txt
	// names none. Defaults to DefaultSitemapPaths.
	Paths []string
}

// NewSitemapService returns a SitemapService fetching through f.
func NewSitemapService(f roster.Fetcher) *SitemapService {
	return &SitemapService{fetcher: f, Paths: DefaultSitemapPaths}
}

// DiscoverURLs finds all URLs from a site's sitemaps, deduplicated, in
// sitemap order. Sitemaps that cannot be fetched or parsed are skipped.
// Returns an empty slice (not nil) if no sitemaps are found.
//
// When baseURL has a non-root path (e.g., https://site.test/lawyers/),
// only URLs with paths under that prefix are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *roster.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, roster.Errorf(roster.EINVALID, "invalid base URL %q", baseURL)
	}
	pathPrefix := strings.TrimSuffix(base.Path, "/")
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemapURLs, err := s.findSitemapURLs(ctx, root)
	if err != nil {
		return nil, err
	}

	allURLs := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sitemapURL := range sitemapURLs {
		urls, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
			if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
				continue
			}
			if !filter.Match(u) {
				continue
			}
			allURLs = append(allURLs, u)
		}
	}
	return allURLs, nil
}

// matchesPathPrefix reports whether rawURL's path is prefix or lies below
// it, so /lawyers matches /lawyers/a but not /lawyers-guide.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Path == prefix || strings.HasPrefix(parsed.Path, prefix+"/")
}

// findSitemapURLs reads Sitemap: directives from robots.txt and falls back
// to the first conventional location that answers 200.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	robots, err := s.get(ctx, root.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	if err != nil {
		return nil, err
	}
	if sitemaps := parseRobots(robots); len(sitemaps) > 0 {
		return sitemaps, nil
	}

	for _, path := range s.Paths {
		candidate := root.ResolveReference(&url.URL{Path: path}).String()
		body, err := s.get(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if body != "" {
			return []string{candidate}, nil
		}
	}
	return nil, nil
}

// parseRobots extracts Sitemap: directives from a robots.txt body.
func parseRobots(body string) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > len("sitemap:") && strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// processSitemap fetches and parses a sitemap, recursing into sitemap
// indexes. Each sitemap is visited at most once.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil || body == "" {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, nil
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	if root.Tag == "sitemapindex" {
		var all []string
		for _, loc := range locs(root, "sitemap") {
			urls, err := s.processSitemap(ctx, loc, seen)
			if err != nil {
				return nil, err
			}
			all = append(all, urls...)
		}
		return all, nil
	}
	return locs(root, "url"), nil
}

// locs returns the trimmed <loc> text of every child element named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// get returns the body of a 200 response, or "" for any other status or
// transport failure. Only a done context is an error.
func (s *SitemapService) get(ctx context.Context, target string) (string, error) {
	resp, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("fetch %s: %w", target, ctxErr)
		}
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	return resp.Body, nil
}
