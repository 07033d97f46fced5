package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster/normalize"
)

// Cascade tries selectors in order within s. For each one, extract is
// applied to the first matching element; the first non-empty result wins.
func Cascade(s *goquery.Selection, selectors []string, extract func(*goquery.Selection) string) string {
	for _, selector := range selectors {
		el := s.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if v := extract(el); v != "" {
			return v
		}
	}
	return ""
}

// ListCascade tries container selectors in order within s and returns the
// text of the items children of the first container that holds at least
// one item of minLen or more characters. When no container yields items,
// the first container whose text contains a comma is split on commas.
func ListCascade(s *goquery.Selection, containers []string, items string, minLen int) []string {
	for _, selector := range containers {
		var found []any
		s.Find(selector).Find(items).Each(func(_ int, item *goquery.Selection) {
			if t := normalize.Text(item.Text()); len(t) >= minLen {
				found = append(found, t)
			}
		})
		if len(found) > 0 {
			return normalize.Strings(found)
		}
	}

	for _, selector := range containers {
		el := s.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if t := normalize.Text(el.Text()); strings.Contains(t, ",") {
			return normalize.Strings(t)
		}
	}
	return nil
}

// Text returns the normalized text of an element.
func Text(el *goquery.Selection) string {
	return normalize.Text(el.Text())
}

// Attr returns the first non-empty attribute of el among names.
func Attr(el *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := el.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// has reports whether s contains at least one element matching
// selector.
func has(s *goquery.Selection, selector string) bool {
	return s.Find(selector).Length() > 0
}
