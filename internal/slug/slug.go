// Package slug turns titles into URL-safe identifiers.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const MaxLength = 50

// Make lowercases s, strips diacritics and joins alphanumeric runs with '-'.
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		normalized = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(normalized) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	return truncate(b.String(), MaxLength)
}

// WithSuffix returns base-n, keeping the result within MaxLength.
func WithSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	return truncate(base, MaxLength-len(suffix)) + suffix
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimRight(string(r[:limit]), "-")
}
