package search

import (
	"github.com/poiesic/recall/index"
)

// uniqueTokens tokenizes text and drops duplicates, preserving first-seen
// order. Query handling works on distinct tokens so repeated words in a
// query cannot inflate scores.
func uniqueTokens(text string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range index.Tokenize(text) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// tokenSet collects the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range index.Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}
