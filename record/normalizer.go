package record

import (
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/normalize"
)

// DefaultEntityTypes are the structured-data types that describe a profile.
var DefaultEntityTypes = []string{"Attorney", "Person", "LegalService"}

// Normalizer maps raw candidate objects onto roster.Record.
type Normalizer struct {
	Fields    Fields
	Heuristic Heuristic

	// EntityTypes selects the structured-data nodes FromStructuredData
	// normalizes. Every other node type is ignored.
	EntityTypes []string

	// SourceDomain is the directory's own host. Website candidates on it
	// are dropped.
	SourceDomain string

	// Now stamps ScrapedAt. Defaults to time.Now.
	Now func() time.Time
}

// NewNormalizer returns a Normalizer with the default field table,
// heuristic and entity types.
func NewNormalizer(sourceDomain string) *Normalizer {
	return &Normalizer{
		Fields:       DefaultFields,
		Heuristic:    DefaultHeuristic,
		EntityTypes:  DefaultEntityTypes,
		SourceDomain: sourceDomain,
		Now:          time.Now,
	}
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now().UTC()
	}
	return n.Now().UTC()
}

// Normalize converts one raw candidate into a record. It returns nil only
// when raw is nil; a candidate without a name gets roster.UnknownName.
func (n *Normalizer) Normalize(raw map[string]any, baseURL string) *roster.Record {
	if raw == nil {
		return nil
	}
	f := n.Fields

	contactEmail, contactPhone := scanContactPoints(raw[f.ContactPoints], f)
	info := contactInfo(raw, f.ContactInfo)

	rec := &roster.Record{
		Name:          normalize.Text(pick(raw, f.Name)),
		ProfileURL:    normalize.URL(pick(raw, f.ProfileURL), baseURL),
		Rating:        number(pick(raw, f.Rating)),
		ReviewCount:   normalize.Int(pick(raw, f.ReviewCount)),
		PracticeAreas: normalize.Strings(pick(raw, f.PracticeAreas)),
		Location:      n.location(raw),
		Phone: normalize.Text(normalize.FirstDefined(
			pick(raw, f.Phone), contactPhone, pick(info, f.ContactInfoPhone),
		)),
		Email: normalize.Text(normalize.FirstDefined(
			pick(raw, f.Email), contactEmail, pick(info, f.ContactInfoEmail),
		)),
		Website: normalize.ExternalWebsite(normalize.FirstDefined(
			pick(raw, f.Website), pick(info, f.ContactInfoWebsite), n.externalSameAs(raw[f.SameAs], baseURL),
		), baseURL, n.SourceDomain),
		YearsLicensed: n.yearsLicensed(raw),
		BarAdmissions: normalize.Strings(pick(raw, f.BarAdmissions)),
		Languages:     normalize.Strings(pick(raw, f.Languages)),
		Education:     normalize.Strings(pick(raw, f.Education)),
		Awards:        normalize.Strings(pick(raw, f.Awards)),
		Bio:           normalize.Text(pick(raw, f.Bio)),
		Reviews:       normalize.Array(pick(raw, f.Reviews)),
		Image:         normalize.Image(pick(raw, f.Image), baseURL),
		ScrapedAt:     n.now(),
	}
	if rec.Name == "" {
		rec.Name = roster.UnknownName
	}
	return rec
}

// number reads a decimal from a scalar or from a {value|text} wrapper.
func number(v any) *float64 {
	if m, ok := v.(map[string]any); ok {
		return normalize.Number(normalize.Text(m))
	}
	return normalize.Number(v)
}

func (n *Normalizer) location(raw map[string]any) string {
	f := n.Fields
	switch addr := raw[f.Address].(type) {
	case string:
		if t := normalize.Text(addr); t != "" {
			return t
		}
	case map[string]any:
		if t := joinParts(addr, f.AddressParts, f.LocationParts); t != "" {
			return t
		}
	}
	return joinParts(raw, f.LocationParts, f.AddressParts)
}

// joinParts joins the non-empty text of the given keys with ", ". Nested
// objects are joined the same way. When primary yields nothing, fallback
// is used.
func joinParts(obj map[string]any, primary, fallback []string) string {
	parts := make([]string, 0, len(primary))
	for _, k := range primary {
		var t string
		if m, ok := obj[k].(map[string]any); ok {
			t = joinParts(m, primary, fallback)
			if t == "" {
				t = normalize.Text(m)
			}
		} else if normalize.Truthy(obj[k]) {
			t = normalize.Text(obj[k])
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 && fallback != nil {
		return joinParts(obj, fallback, nil)
	}
	return normalize.Text(strings.Join(parts, ", "))
}

func scanContactPoints(v any, f Fields) (email, phone any) {
	for _, item := range normalize.Array(v) {
		cp, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if email == nil {
			if e := pick(cp, f.ContactEmail); normalize.Truthy(e) {
				email = e
			}
		}
		if phone == nil {
			if p := pick(cp, f.ContactPhone); normalize.Truthy(p) {
				phone = p
			}
		}
	}
	return email, phone
}

func contactInfo(raw map[string]any, keys []string) map[string]any {
	for _, k := range keys {
		if m, ok := Lookup(raw, k).(map[string]any); ok && len(m) > 0 {
			return m
		}
	}
	return nil
}

func (n *Normalizer) externalSameAs(v any, baseURL string) any {
	for _, item := range normalize.Array(v) {
		s, ok := item.(string)
		if !ok {
			continue
		}
		u, err := url.Parse(normalize.URL(s, baseURL))
		if err == nil && normalize.IsSourceHost(u.Hostname(), n.SourceDomain) {
			continue
		}
		return s
	}
	return nil
}

// yearsLicensed prefers an explicit count and otherwise derives one from an
// admission year.
func (n *Normalizer) yearsLicensed(raw map[string]any) int {
	if years := normalize.Int(pick(raw, n.Fields.YearsLicensed)); years > 0 {
		return years
	}
	year := normalize.Int(pick(raw, n.Fields.YearAdmitted))
	now := n.now().Year()
	if year < 1900 || year > now {
		return 0
	}
	return now - year
}

// FromPayload discovers candidates anywhere in an API response or
// embedded-state value and normalizes each of them.
func (n *Normalizer) FromPayload(v any, baseURL string) []*roster.Record {
	var out []*roster.Record
	for _, raw := range Discover(v, n.Heuristic) {
		if rec := n.Normalize(raw, baseURL); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// FromStructuredData normalizes the profile nodes of parsed structured-data
// blocks. Top-level arrays, @graph lists and ItemList elements are walked;
// only nodes whose @type is one of EntityTypes are kept.
func (n *Normalizer) FromStructuredData(blocks []any, baseURL string) []*roster.Record {
	var out []*roster.Record
	for _, block := range blocks {
		if list, ok := block.([]any); ok {
			for _, item := range list {
				out = n.addNode(out, item, baseURL)
			}
			continue
		}
		out = n.addNode(out, block, baseURL)
	}
	return out
}

func (n *Normalizer) addNode(out []*roster.Record, v any, baseURL string) []*roster.Record {
	node, ok := v.(map[string]any)
	if !ok {
		return out
	}
	if graph, ok := node["@graph"]; ok && normalize.Truthy(graph) {
		for _, item := range normalize.Array(graph) {
			out = n.addNode(out, item, baseURL)
		}
		return out
	}
	if HasType(node, "ItemList") && normalize.Truthy(node["itemListElement"]) {
		for _, el := range normalize.Array(node["itemListElement"]) {
			if wrapper, ok := el.(map[string]any); ok && normalize.Truthy(wrapper["item"]) {
				el = wrapper["item"]
			}
			out = n.addNode(out, el, baseURL)
		}
		return out
	}
	if HasType(node, n.EntityTypes...) {
		if rec := n.Normalize(node, baseURL); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// HasType reports whether a structured-data node's @type, a string or a
// list of strings, names one of types.
func HasType(node map[string]any, types ...string) bool {
	var have []string
	switch t := node["@type"].(type) {
	case string:
		have = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				have = append(have, s)
			}
		}
	}
	for _, h := range have {
		for _, want := range types {
			if h == want {
				return true
			}
		}
	}
	return false
}

// Reviews concatenates the raw review objects of every structured-data
// block, including array members and @graph nodes.
func Reviews(blocks []any) []any {
	var out []any
	var visit func(v any)
	visit = func(v any) {
		switch x := v.(type) {
		case []any:
			for _, item := range x {
				visit(item)
			}
		case map[string]any:
			if graph, ok := x["@graph"].([]any); ok {
				visit(graph)
			}
			out = append(out, normalize.Array(normalize.FirstDefined(x["review"], x["reviews"]))...)
		}
	}
	for _, block := range blocks {
		visit(block)
	}
	return out
}

// nextPageKeys are where paginated API payloads announce their next page.
var nextPageKeys = []string{"nextPageUrl", "next", "links.next", "pagination.next", "paging.next"}

// NextPageURL returns the absolute next-page URL announced by an API
// payload, or "" when there is none.
func NextPageURL(v any, baseURL string) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	next, ok := pick(obj, nextPageKeys).(string)
	if !ok {
		return ""
	}
	return normalize.URL(next, baseURL)
}
