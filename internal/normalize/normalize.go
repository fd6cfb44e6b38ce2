// Package normalize canonicalizes free-text identifiers (player, team and
// position names) so that visually identical strings compare equal.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode compatibility composition (NFKC), collapses every
// whitespace run to a single space and trims both ends. It is idempotent.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// NormalizeAll normalizes each string, returning a new slice.
func NormalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}

// Equal reports whether two identifiers normalize to the same string.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
