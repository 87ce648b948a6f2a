package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldCase is the comparison form for emails: trimmed, Unicode case-folded.
func FoldCase(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// StripMarks removes combining diacritics ("Pérez" -> "Perez").
func StripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Simplify is the comparison form for free-text search.
func Simplify(s string) string {
	return FoldCase(StripMarks(s))
}

// Handle derives a public handle from a display name: "@" followed by the
// name without whitespace or diacritics, lower-cased.
func Handle(name string) string {
	var b strings.Builder
	b.WriteByte('@')
	for _, r := range Simplify(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
