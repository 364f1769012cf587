package autoverify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a free-text transfer note into a comparable form:
// diacritics stripped, lowercased, whitespace collapsed to single spaces.
// Vietnamese banking apps render the same note with and without accents, so
// matching happens on the folded form only.
func Normalize(s string) string {
	folded, _, err := transform.String(deaccent, s)
	if err != nil {
		folded = s
	}
	// đ/Đ carry no combining mark and survive NFD stripping
	folded = strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		}
		return r
	}, folded)
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// digits strips everything but 0-9 from an account number.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tail returns the last n characters of s, or all of s when shorter.
func tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
