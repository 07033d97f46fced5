package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster/normalize"
)

var (
	absoluteAPIURL = regexp.MustCompile(`https?://[^\s"'\\]+/api/[^\s"'\\]+`)
	relativeAPIURL = regexp.MustCompile(`['"]((?:/api/|/graphql)[^'"\s]+)['"]`)
)

// NextPageURL returns the absolute URL of the next listing page. A rel=next
// link wins; otherwise a pagination anchor labelled "next" or "next page"
// is used.
func (d *Document) NextPageURL() string {
	if href := Attr(d.doc.Find(`a[rel="next"], link[rel="next"]`).First(), "href"); href != "" {
		return normalize.URL(href, d.url)
	}

	var href string
	d.doc.Find(`a[class*="next"], .pagination a`).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		switch strings.ToLower(Text(el)) {
		case "next", "next page":
			href = Attr(el, "href")
			return false
		}
		return true
	})
	return normalize.URL(href, d.url)
}

// APIURLs returns the internal API endpoints the page source references:
// absolute URLs with an /api/ path segment and quoted relative /api/ or
// /graphql paths. Duplicates are dropped.
func (d *Document) APIURLs() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, m := range absoluteAPIURL.FindAllString(d.html, -1) {
		add(m)
	}
	for _, m := range relativeAPIURL.FindAllStringSubmatch(d.html, -1) {
		add(normalize.URL(m[1], d.url))
	}
	return out
}
