package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor(DefaultSnippetWindow, DefaultMaxPerToken)

	t.Run("short text fits one window", func(t *testing.T) {
		got := extractor.Extract("Decided to switch jobs today", []string{"decided"})
		require.Len(t, got, 1)
		assert.Equal(t, "...decided to switch jobs today...", got[0])
	})

	t.Run("every snippet contains a token", func(t *testing.T) {
		text := strings.Repeat("filler words here. ", 30) +
			"the team decided to ship. " +
			strings.Repeat("more filler after. ", 30) +
			"later we decided again."
		got := extractor.Extract(text, []string{"decided", "ship"})
		require.NotEmpty(t, got)
		for _, snip := range got {
			assert.True(t,
				strings.Contains(snip, "decided") || strings.Contains(snip, "ship"),
				"snippet %q must contain a query token", snip)
		}
	})

	t.Run("token order then occurrence order", func(t *testing.T) {
		small := NewExtractor(8, DefaultMaxPerToken)
		text := "alpha one. beta two. alpha three."
		got := small.Extract(text, []string{"beta", "alpha"})
		require.Len(t, got, 3)
		assert.Contains(t, got[0], "beta")
		assert.Contains(t, got[1], "alpha one")
		assert.Contains(t, got[2], "alpha three")
	})

	t.Run("whole word boundaries", func(t *testing.T) {
		// "testing" must not produce a match for token "test", while a
		// digit neighbor is a boundary and does.
		got := extractor.Extract("testing the test1 rig", []string{"test"})
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "test1")
	})

	t.Run("duplicates removed", func(t *testing.T) {
		// Both tokens produce the identical window over this short text.
		got := extractor.Extract("alpha beta", []string{"alpha", "beta"})
		assert.Equal(t, []string{"...alpha beta..."}, got)
	})

	t.Run("occurrences per token are capped", func(t *testing.T) {
		capped := NewExtractor(4, 2)
		text := strings.Repeat("word gap gap gap gap gap. ", 6)
		got := capped.Extract(text, []string{"word"})
		assert.Len(t, got, 2)
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.Empty(t, extractor.Extract("some text", nil))
		assert.Empty(t, extractor.Extract("some text", []string{}))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, extractor.Extract("", []string{"alpha"}))
	})

	t.Run("case insensitive over lowered text", func(t *testing.T) {
		got := extractor.Extract("DECIDED TO GO", []string{"decided"})
		require.Len(t, got, 1)
		assert.Equal(t, "...decided to go...", got[0])
	})
}

func TestExtractor_Truncation(t *testing.T) {
	window := 20
	extractor := NewExtractor(window, DefaultMaxPerToken)

	text := strings.Repeat("x", 50) + " decided " + strings.Repeat("y", 50)
	got := extractor.Extract(text, []string{"decided"})
	require.Len(t, got, 1)

	snip := got[0]
	assert.True(t, strings.HasPrefix(snip, "..."))
	assert.True(t, strings.HasSuffix(snip, "..."))
	assert.Contains(t, snip, "decided")

	// window chars each side around a 7-char token exceeds 2*window, so the
	// snippet body is cut to 2*window plus the inner ellipsis.
	body := strings.TrimPrefix(strings.TrimSuffix(snip, "..."), "...")
	assert.LessOrEqual(t, len(body), 2*window+3)
}

func TestExtractor_RuneBoundaries(t *testing.T) {
	extractor := NewExtractor(2, DefaultMaxPerToken)

	// Both window edges land in the middle of a multi-byte rune and must be
	// nudged onto boundaries instead of slicing through it.
	text := "ééé dec ééé"
	got := extractor.Extract(text, []string{"dec"})
	require.Len(t, got, 1)
	assert.Equal(t, "...dec...", got[0])
	assert.Equal(t, got[0], strings.ToValidUTF8(got[0], ""),
		"snippet %q must stay valid UTF-8", got[0])
}

func TestNewExtractor_Defaults(t *testing.T) {
	extractor := NewExtractor(0, -1)
	assert.Equal(t, DefaultSnippetWindow, extractor.window)
	assert.Equal(t, DefaultMaxPerToken, extractor.maxPerToken)
}
