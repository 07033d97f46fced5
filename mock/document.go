package mock

import "github.com/fwojciec/roster"

var (
	_ roster.Document       = (*Document)(nil)
	_ roster.DocumentParser = (*DocumentParser)(nil)
)

// Document is a mock implementation of roster.Document. Nil functions
// return zero values so tests only stub the sources they exercise.
type Document struct {
	URLFn            func() string
	StructuredDataFn func() []any
	EmbeddedStateFn  func() []any
	CardsFn          func() []*roster.Record
	ProfileFieldsFn  func() *roster.Record
	NextPageURLFn    func() string
	APIURLsFn        func() []string
}

func (d *Document) URL() string {
	if d.URLFn == nil {
		return ""
	}
	return d.URLFn()
}

func (d *Document) StructuredData() []any {
	if d.StructuredDataFn == nil {
		return nil
	}
	return d.StructuredDataFn()
}

func (d *Document) EmbeddedState() []any {
	if d.EmbeddedStateFn == nil {
		return nil
	}
	return d.EmbeddedStateFn()
}

func (d *Document) Cards() []*roster.Record {
	if d.CardsFn == nil {
		return nil
	}
	return d.CardsFn()
}

func (d *Document) ProfileFields() *roster.Record {
	if d.ProfileFieldsFn == nil {
		return &roster.Record{}
	}
	return d.ProfileFieldsFn()
}

func (d *Document) NextPageURL() string {
	if d.NextPageURLFn == nil {
		return ""
	}
	return d.NextPageURLFn()
}

func (d *Document) APIURLs() []string {
	if d.APIURLsFn == nil {
		return nil
	}
	return d.APIURLsFn()
}

// DocumentParser is a mock implementation of roster.DocumentParser.
type DocumentParser struct {
	ParseFn func(html string, baseURL string) (roster.Document, error)
}

func (p *DocumentParser) Parse(html string, baseURL string) (roster.Document, error) {
	return p.ParseFn(html, baseURL)
}
