package lexical

import (
	"strings"
	"unicode"
)

// minTokenBytes drops tokens shorter than this (spec.md §4.3).
const minTokenBytes = 2

// tokenize splits content on Unicode word boundaries, lowercases, and
// drops tokens under minTokenBytes.
func tokenize(content []byte) []string {
	fields := strings.FieldsFunc(string(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minTokenBytes {
			continue
		}
		out = append(out, strings.ToLower(f))
	}
	return out
}
