package resolver

import (
	"strings"
)

// NormalizeSignature canonicalizes the textual form of an abstract type
// signature so that directive text and AST-rendered text compare equal.
// All whitespace is removed; nothing else changes.
func NormalizeSignature(signature string) string {
	var b strings.Builder
	b.Grow(len(signature))
	for _, ch := range signature {
		if ch == ' ' || ch == '\t' {
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Sanitize derives the name-safe registry key for an abstract type
// signature. The mapping is a pure, total function: the same signature
// always yields the same key, and two structurally different generic
// instantiations never collide. Underscores already present in the
// signature are escaped before any separator is introduced, and commas
// map to a double underscore, so dots, commas and literal underscores all
// stay distinguishable in the key.
//
//	UserAPI              -> UserAPI
//	pkg.UserAPI          -> pkg_UserAPI
//	Cache[string]        -> Cache_string
//	Cache[[]string]      -> Cache_slice_string
//	Lookup[string,int]   -> Lookup_string__int
//	Lookup[my_type]      -> Lookup_my_u_type
//	Cache[*bytes.Buffer] -> Cache_ptr_bytes_Buffer
func Sanitize(signature string) string {
	s := NormalizeSignature(signature)

	s = strings.ReplaceAll(s, "_", "_u_")
	s = strings.ReplaceAll(s, "[]", "slice_")
	s = strings.ReplaceAll(s, "map[", "map_")
	s = strings.ReplaceAll(s, "*", "ptr_")
	s = strings.ReplaceAll(s, ",", "__")

	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_':
			b.WriteRune(ch)
		default:
			// Brackets, dots and anything exotic become separators.
			b.WriteRune('_')
		}
	}

	return strings.Trim(b.String(), "_")
}
