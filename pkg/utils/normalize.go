package utils

import "strings"

// NormalizeBool collapses the admin flag to a strict boolean no matter how it
// was serialized. Booleans pass through, strings match "true" case-insensitively,
// everything else falls back to plain truthiness. Must be called everywhere the
// flag crosses a serialization boundary (token claims, session restore, Mongo
// documents, request bodies, response bodies) — the flag has been observed as
// the string "false" in more than one of those places.
func NormalizeBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case nil:
		return false
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case float32:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
