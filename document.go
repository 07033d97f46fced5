package roster

// Document is a parsed page exposing every raw source the extraction
// pipeline reads from. Implementations never fail on malformed fragments;
// they skip them.
type Document interface {
	// URL returns the base URL relative links resolve against.
	URL() string

	// StructuredData returns every JSON-LD block, parsed, in document order.
	StructuredData() []any

	// EmbeddedState returns JSON the page embeds to bootstrap its own
	// rendering: framework data blobs, JSON script blocks and inline
	// global-state assignments.
	EmbeddedState() []any

	// Cards extracts records directly from listing markup.
	Cards() []*Record

	// ProfileFields extracts profile fields from a detail page's markup and
	// meta tags. Fields that are not found stay empty.
	ProfileFields() *Record

	// NextPageURL returns the absolute URL of the next listing page, or "".
	NextPageURL() string

	// APIURLs returns absolute URLs of internal API endpoints referenced
	// by the page.
	APIURLs() []string
}

// DocumentParser parses raw HTML into a Document.
type DocumentParser interface {
	Parse(html string, baseURL string) (Document, error)
}
