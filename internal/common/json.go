package common

import "encoding/json"

// DecodeArrayOrEmpty decodes raw JSON into a slice, recovering to an empty
// slice on any error or non-array shape. The second result reports whether
// the payload decoded cleanly, so callers can log recovery without raising.
func DecodeArrayOrEmpty[T any](raw []byte) ([]T, bool) {
	if len(raw) == 0 {
		return []T{}, true
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return []T{}, false
	}
	if out == nil {
		out = []T{}
	}
	return out, true
}
