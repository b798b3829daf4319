package lexical

import "strings"

// TokenSet is a set of lower-cased words.
type TokenSet map[string]struct{}

// Tokenize lower-cases s and splits it on whitespace into a set of words.
// Punctuation stays attached to its word.
func Tokenize(s string) TokenSet {
	fields := strings.Fields(strings.ToLower(s))
	set := make(TokenSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Overlap returns |q ∩ other| / max(1, |q|).
func (q TokenSet) Overlap(other TokenSet) float64 {
	shared := 0
	for w := range q {
		if _, ok := other[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(1, len(q)))
}
