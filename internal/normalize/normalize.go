// Package normalize cleans raw search terms before they are sent to the
// embedding service.
package normalize

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// Clean strips non-alphabetic characters, lower-cases the result and
// replaces plural nouns with their singular form, token by token. The
// result may be empty; callers treat that as a malformed term.
func Clean(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for i, tok := range tokens {
		tokens[i] = inflection.Singular(tok)
	}
	return strings.Join(tokens, " ")
}
