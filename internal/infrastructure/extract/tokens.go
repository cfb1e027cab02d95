package extract

import (
	"strings"
	"unicode"
)

// booleanLiterals are search-query operators, not content words.
var booleanLiterals = map[string]struct{}{
	"and": {},
	"or":  {},
	"not": {},
}

// Tokens normalizes a search query into lowercase content words.
// "+bitcoin AND crypto" yields [bitcoin crypto].
func Tokens(query string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, strings.ToLower(query))

	var tokens []string
	seen := map[string]struct{}{}
	for _, word := range strings.Fields(stripped) {
		if _, ok := booleanLiterals[word]; ok {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}
	return tokens
}

func containsAll(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}
