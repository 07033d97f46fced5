// Package normalize converts raw scalar, list and object values into the
// canonical text, URL, number and list forms a roster.Record holds.
//
// Every function is total: malformed input yields the field's empty value.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// maxMarkupPasses bounds markup stripping for text whose entities decode
// into further tags.
const maxMarkupPasses = 4

// Text collapses whitespace runs to a single space and trims the ends.
// It accepts strings, numbers, booleans and {value|text|name} wrapper
// objects. Any HTML markup is removed.
func Text(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case bool:
		s = strconv.FormatBool(x)
	case json.Number:
		s = x.String()
	case map[string]any:
		return Text(FirstDefined(x["value"], x["text"], x["name"]))
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if t := Text(item); t != "" {
				parts = append(parts, t)
			}
		}
		s = strings.Join(parts, ", ")
	default:
		s = fmt.Sprint(x)
	}

	for range maxMarkupPasses {
		stripped, ok := stripMarkup(s)
		if !ok {
			break
		}
		s = stripped
	}
	return collapse(s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripMarkup returns the text content of s. The bool result is false when
// s contains no markup, in which case s is returned untouched so entity
// references in plain text survive.
func stripMarkup(s string) (string, bool) {
	if !strings.Contains(s, "<") {
		return s, false
	}

	var b strings.Builder
	found := false
	skip := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String(), found
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			found = true
			name, _ := z.TagName()
			if isRawTextTag(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			found = true
			name, _ := z.TagName()
			if isRawTextTag(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			found = true
			b.WriteByte(' ')
		}
	}
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}
