package normalize

// FirstDefined returns the first value in priority order that Defined
// reports as present, or the zero value of T when none is.
func FirstDefined[T any](vals ...T) T {
	for _, v := range vals {
		if Defined(v) {
			return v
		}
	}
	var zero T
	return zero
}

// Defined reports whether v carries a value. Nil, the empty string, nil
// pointers, integer zero and empty lists or objects are absent. A JSON
// number zero (float64) and false are present.
func Defined(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case *float64:
		return x != nil
	case int:
		return x != 0
	case []string:
		return len(x) > 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}
