// Package phone normalizes phone-like strings and decides whether two
// of them refer to the same subscriber. Matching is deliberately loose:
// device JIDs and stored numbers disagree on country-code prefixes, so
// containment of one digit string in the other counts as a match.
package phone

import "strings"

// Normalize keeps only ASCII decimal digits, preserving order.
func Normalize(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Matches reports whether two normalized numbers identify the same
// subscriber. Both sides must be non-empty; either may carry extra
// leading digits.
func Matches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
