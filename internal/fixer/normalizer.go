package fixer

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
)

// Normalize flattens the given fields into a comparable token sequence:
// accents and diacritics transliterated to ASCII, lowercased, punctuation
// dropped, split on whitespace. Tokens are kept in field order with no
// de-duplication. Pure and deterministic.
func Normalize(fields ...string) []string {
	var tokens []string
	for _, field := range fields {
		if field == "" {
			continue
		}
		clean := strings.ToLower(unidecode.Unidecode(field))

		var b strings.Builder
		b.Grow(len(clean))
		for _, r := range clean {
			switch {
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				b.WriteRune(r)
			default:
				// punctuation splits tokens: "AC/DC" -> "ac", "dc"
				b.WriteRune(' ')
			}
		}

		tokens = append(tokens, strings.Fields(b.String())...)
	}
	return tokens
}
