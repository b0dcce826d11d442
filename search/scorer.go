package search

import (
	"strings"
)

// Weights are the relevance contributions of each match signal. The values
// are heuristic constants carried over from long use; they have no derivation
// beyond working well on real workspaces, so they are kept configurable
// rather than re-derived.
type Weights struct {
	// ExactPhrase is added once when the full query appears verbatim.
	ExactPhrase float64
	// TokenMatch is added per distinct query token present as a text token.
	TokenMatch float64
	// PartialMatch is added per query/text token pair where one strictly
	// contains the other.
	PartialMatch float64
	// HeadingMatch is added per heading line mentioning any query token.
	HeadingMatch float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		ExactPhrase:  10.0,
		TokenMatch:   2.0,
		PartialMatch: 0.5,
		HeadingMatch: 3.0,
	}
}

// Scorer computes relevance scores for candidate texts. Scores are
// case-insensitive, unbounded above and comparable only within one query's
// result set.
type Scorer struct {
	weights Weights
}

// NewScorer returns a scorer using the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the relevance of text for a free-form query. A query with
// no extractable tokens scores zero against every text.
func (s *Scorer) Score(text, query string) float64 {
	queryLower := strings.ToLower(query)
	return s.score(strings.ToLower(text), queryLower, uniqueTokens(queryLower))
}

// score works on pre-lowered inputs so the engine can prepare the query once
// and reuse it across every candidate. Match occurrences are counted as
// integers and weighted in one final step, keeping the result independent of
// evaluation order.
func (s *Scorer) score(textLower, queryLower string, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	var phraseHits, tokenHits, partialHits int

	if strings.Contains(textLower, queryLower) {
		phraseHits = 1
	}

	textTokens := tokenSet(textLower)
	for _, qt := range queryTokens {
		if _, ok := textTokens[qt]; ok {
			tokenHits++
		}
		for tt := range textTokens {
			if tt == qt {
				continue
			}
			if strings.Contains(tt, qt) || strings.Contains(qt, tt) {
				partialHits++
			}
		}
	}

	headingHits := headingMatches(textLower, queryTokens)

	return float64(phraseHits)*s.weights.ExactPhrase +
		float64(tokenHits)*s.weights.TokenMatch +
		float64(partialHits)*s.weights.PartialMatch +
		float64(headingHits)*s.weights.HeadingMatch
}

// headingMatches counts lines shaped like a markdown heading (one or more
// '#' then a space) whose text mentions any query token. Each qualifying
// line counts once no matter how many tokens it contains.
func headingMatches(textLower string, tokens []string) int {
	count := 0
	for _, line := range strings.Split(textLower, "\n") {
		rest := strings.TrimLeft(line, "#")
		if len(rest) == len(line) || !strings.HasPrefix(rest, " ") {
			continue
		}
		for _, tok := range tokens {
			if strings.Contains(rest, tok) {
				count++
				break
			}
		}
	}
	return count
}
