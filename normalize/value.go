package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Array returns v as a list. Lists keep their truthy entries, strings are
// split on commas into trimmed items, and any other non-empty scalar is
// wrapped into a single-item list. Absent input yields nil.
func Array(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			if Truthy(item) {
				out = append(out, item)
			}
		}
		return out
	case []string:
		out := make([]any, 0, len(x))
		for _, item := range x {
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	case string:
		var out []any
		for _, part := range strings.Split(x, ",") {
			if t := Text(part); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	if !Truthy(v) {
		return nil
	}
	return []any{v}
}

// Strings normalizes every item of Array(v) to text, dropping empty and
// repeated entries while keeping first-seen order.
func Strings(v any) []string {
	items := Array(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		t := Text(item)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

var (
	nonDecimal = regexp.MustCompile(`[^0-9.]`)
	nonDigit   = regexp.MustCompile(`[^0-9]`)
	leadingNum = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Number parses a decimal from v after removing every character that is
// not a digit or a dot. It returns nil when nothing numeric remains or the
// result is not finite.
func Number(v any) *float64 {
	var s string
	switch x := v.(type) {
	case float64:
		return finite(x)
	case int:
		return finite(float64(x))
	case json.Number:
		s = x.String()
	case string:
		s = x
	default:
		return nil
	}
	s = nonDecimal.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Int parses a whole number from v after removing every non-digit
// character. Decimals are truncated. It returns 0 on failure.
func Int(v any) int {
	var s string
	switch x := v.(type) {
	case int:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case json.Number:
		s = x.String()
	case string:
		s = x
	default:
		return 0
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && isDigits(s[:i]) {
		s = s[:i]
	}
	n, err := strconv.Atoi(nonDigit.ReplaceAllString(s, ""))
	if err != nil {
		return 0
	}
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LeadingNumber returns the first decimal number found in free text, so
// "4.8 out of 5" yields 4.8. It returns nil when s holds no number.
func LeadingNumber(s string) *float64 {
	m := leadingNum.FindString(s)
	if m == "" {
		return nil
	}
	return Number(m)
}

// Truthy mirrors the loose truthiness raw JSON sources are written against:
// nil, false, 0 and "" are falsy, every list and object is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	}
	return true
}
