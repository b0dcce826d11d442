package search

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/recall/index"
)

const (
	// DefaultSnippetWindow is the context captured on each side of a match.
	DefaultSnippetWindow = 100

	// DefaultMaxPerToken caps how many occurrences of a single token turn
	// into snippets.
	DefaultMaxPerToken = 5
)

// Extractor builds short excerpts around query token matches so results can
// show where a hit landed.
type Extractor struct {
	window      int
	maxPerToken int
}

// NewExtractor returns an extractor with the given context window and
// per-token occurrence cap. Values below 1 fall back to the defaults.
func NewExtractor(window, maxPerToken int) *Extractor {
	if window < 1 {
		window = DefaultSnippetWindow
	}
	if maxPerToken < 1 {
		maxPerToken = DefaultMaxPerToken
	}
	return &Extractor{window: window, maxPerToken: maxPerToken}
}

// Extract returns excerpts around whole-word occurrences of the tokens in
// text, ordered by token then by occurrence, with exact duplicates removed.
// Extraction works over the lowercased text, mirroring the case-insensitive
// scorer. No tokens means no snippets, never a panic.
func (e *Extractor) Extract(text string, tokens []string) []string {
	return e.extract(strings.ToLower(text), tokens)
}

func (e *Extractor) extract(textLower string, tokens []string) []string {
	var snippets []string
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		for _, pos := range wholeWordOccurrences(textLower, tok, e.maxPerToken) {
			snip := e.cut(textLower, pos, len(tok))
			if _, ok := seen[snip]; ok {
				continue
			}
			seen[snip] = struct{}{}
			snippets = append(snippets, snip)
		}
	}
	return snippets
}

// cut extracts the context window around a match, keeping every slice on a
// rune boundary. Snippets that still exceed twice the window after trimming
// are shortened with an ellipsis, and every snippet is wrapped in ellipses
// to signal the surrounding text.
func (e *Extractor) cut(text string, pos, matchLen int) string {
	start := pos - e.window
	if start < 0 {
		start = 0
	}
	end := pos + matchLen + e.window
	if end > len(text) {
		end = len(text)
	}
	start, end = runeBounded(text, start, end)

	snip := strings.TrimSpace(text[start:end])
	if len(snip) > 2*e.window {
		snip = trimToRune(snip, 2*e.window) + "..."
	}
	return "..." + snip + "..."
}

// wholeWordOccurrences returns the byte offsets of up to max occurrences of
// token in text whose neighbors are not ASCII letters. Matches do not
// overlap.
func wholeWordOccurrences(text, token string, max int) []int {
	if token == "" {
		return nil
	}
	var offsets []int
	from := 0
	for len(offsets) < max {
		i := strings.Index(text[from:], token)
		if i < 0 {
			break
		}
		pos := from + i
		if boundaryBefore(text, pos) && boundaryAfter(text, pos+len(token)) {
			offsets = append(offsets, pos)
			from = pos + len(token)
		} else {
			from = pos + 1
		}
	}
	return offsets
}

// boundaryBefore reports whether pos sits at the start of a word.
func boundaryBefore(text string, pos int) bool {
	return pos == 0 || !index.IsASCIILetter(text[pos-1])
}

// boundaryAfter reports whether end sits just past the end of a word.
func boundaryAfter(text string, end int) bool {
	return end == len(text) || !index.IsASCIILetter(text[end])
}

// runeBounded nudges start forward and end backward until both land on rune
// boundaries, so byte-offset windows never split multi-byte characters.
func runeBounded(text string, start, end int) (int, int) {
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	for end > start && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	return start, end
}

// trimToRune shortens s to at most max bytes without splitting a rune.
func trimToRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
