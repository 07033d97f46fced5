// Package record turns raw JSON values of unknown shape into canonical
// roster records: it locates candidate objects, normalizes them field by
// field, classifies structured-data nodes and picks the best candidate for
// a page.
package record

import (
	"maps"
	"slices"

	"github.com/fwojciec/roster/normalize"
)

// Heuristic is the shape test a JSON object must pass to be treated as a
// profile candidate: a name key, plus either a link key or a hint key.
// Key presence uses the loose truthiness of normalize.Truthy.
type Heuristic struct {
	NameKeys []string
	LinkKeys []string
	HintKeys []string

	// MaxDepth bounds the walk. Values nested deeper are not visited.
	MaxDepth int
}

// DefaultHeuristic recognizes professional-profile objects.
var DefaultHeuristic = Heuristic{
	NameKeys: []string{"name", "fullName", "displayName", "title"},
	LinkKeys: []string{"profileUrl", "profile_url", "url", "link"},
	HintKeys: []string{"practiceAreas", "specialties", "avvoRating", "rating", "location"},
	MaxDepth: 7,
}

// Match reports whether obj looks like a profile record.
func (h Heuristic) Match(obj map[string]any) bool {
	return hasAny(obj, h.NameKeys) && (hasAny(obj, h.LinkKeys) || hasAny(obj, h.HintKeys))
}

func hasAny(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if normalize.Truthy(obj[k]) {
			return true
		}
	}
	return false
}

// Discover walks v and returns every array element that passes the
// heuristic, in traversal order. A matching element is captured whole and
// not descended into. Objects are descended through their values without
// being tested themselves, so a lone object only yields candidates found in
// the lists it contains.
func Discover(v any, h Heuristic) []map[string]any {
	var out []map[string]any
	discover(v, h, 0, &out)
	return out
}

func discover(v any, h Heuristic, depth int, out *[]map[string]any) {
	if depth > h.MaxDepth {
		return
	}
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if obj, ok := item.(map[string]any); ok && h.Match(obj) {
				*out = append(*out, obj)
				continue
			}
			discover(item, h, depth+1, out)
		}
	case map[string]any:
		// Decoded objects carry no key order; sorting keeps the result
		// stable across runs.
		for _, key := range slices.Sorted(maps.Keys(x)) {
			discover(x[key], h, depth+1, out)
		}
	}
}
