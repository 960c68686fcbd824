package storage

import "strings"

// SanitizeKeyPart replaces every character outside [a-zA-Z0-9._-] so
// user-supplied values (filenames, external ids) are safe inside store keys.
func SanitizeKeyPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
