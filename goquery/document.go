package goquery

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster"
)

// Ensure Parser implements roster.DocumentParser.
var _ roster.DocumentParser = (*Parser)(nil)

// Ensure Document implements roster.Document.
var _ roster.Document = (*Document)(nil)

// minEmbeddedJSONLength skips JSON script blocks too short to hold records,
// such as feature flags and empty configs.
const minEmbeddedJSONLength = 30

// StateVariables are the global variables pages assign their client-side
// state to in inline scripts.
var StateVariables = []string{"__APOLLO_STATE__", "__INITIAL_STATE__", "__PRELOADED_STATE__"}

// stateAssignments match `NAME = {...};` on a single line. The object
// literal runs to the last closing brace on the line.
var stateAssignments = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(StateVariables))
	for i, name := range StateVariables {
		out[i] = regexp.MustCompile(`(?m)` + regexp.QuoteMeta(name) + `\s*=\s*(\{.*\})\s*;?\s*$`)
	}
	return out
}()

// Parser builds Documents with goquery.
type Parser struct {
	Cards   CardSelectors
	Profile ProfileSelectors

	// SourceDomain is the directory's own host. Website links on it are
	// dropped.
	SourceDomain string

	// Now stamps ScrapedAt on card records. Defaults to time.Now.
	Now func() time.Time
}

// NewParser returns a Parser with the default selector tables.
func NewParser(sourceDomain string) *Parser {
	return &Parser{
		Cards:        DefaultCardSelectors,
		Profile:      DefaultProfileSelectors,
		SourceDomain: sourceDomain,
		Now:          time.Now,
	}
}

// Parse parses html fetched from baseURL.
func (p *Parser) Parse(html string, baseURL string) (roster.Document, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, roster.Errorf(roster.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, roster.Errorf(roster.EINVALID, "failed to parse HTML: %v", err)
	}

	return &Document{doc: doc, html: html, url: baseURL, parser: p}, nil
}

func (p *Parser) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

// Document is a parsed HTML page.
type Document struct {
	doc    *goquery.Document
	html   string
	url    string
	parser *Parser
}

// URL returns the base URL the document was parsed with.
func (d *Document) URL() string {
	return d.url
}

// StructuredData returns every parseable JSON-LD block in document order.
func (d *Document) StructuredData() []any {
	var out []any
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if v, ok := parseJSON(s.Text()); ok {
			out = append(out, v)
		}
	})
	return out
}

// EmbeddedState returns, in order: the Next.js page data blob, every other
// JSON script block long enough to hold data, and each inline global-state
// assignment found in scripts without a src.
func (d *Document) EmbeddedState() []any {
	var out []any

	if v, ok := parseJSON(d.doc.Find("#__NEXT_DATA__").First().Text()); ok {
		out = append(out, v)
	}

	d.doc.Find(`script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
		if id, _ := s.Attr("id"); id == "__NEXT_DATA__" {
			return
		}
		text := s.Text()
		if len(text) < minEmbeddedJSONLength {
			return
		}
		if v, ok := parseJSON(text); ok {
			out = append(out, v)
		}
	})

	d.doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		content := s.Text()
		if content == "" {
			return
		}
		for _, re := range stateAssignments {
			m := re.FindStringSubmatch(content)
			if m == nil {
				continue
			}
			if v, ok := parseJSON(m[1]); ok {
				out = append(out, v)
			}
		}
	})

	return out
}

func parseJSON(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return v, true
}
