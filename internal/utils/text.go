package utils

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSearch folds case, strips diacritics and punctuation and
// collapses whitespace so stored titles and user queries compare equal.
func NormalizeSearch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == ':' || r == '.':
			space = true
		}
	}
	return b.String()
}

// SortTitle drops a leading English article so "The Thing" sorts under T.
func SortTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) > 4 && strings.EqualFold(trimmed[:4], "the ") {
		return strings.TrimSpace(trimmed[4:])
	}
	return trimmed
}

// SortByName orders items by name using the collation rules of lang, so
// Cyrillic names sort alphabetically rather than by code point.
func SortByName[T any](items []T, lang string, name func(T) string) {
	c := collate.New(language.Make(lang), collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(name(items[i]), name(items[j])) < 0
	})
}
