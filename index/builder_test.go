package index

import (
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Registry(t *testing.T) {
	docs := []core.Document{
		{ID: "2024-01-02", Content: "second note"},
		{ID: "ideas", Content: "loose thoughts"},
		{ID: "2024-03-01", Content: "march note"},
	}

	snap, err := Build(docs, core.FactSet{})
	require.NoError(t, err)

	assert.Equal(t, 3, snap.DocumentCount())
	assert.NotEmpty(t, snap.BuildID())

	var order []string
	for doc := range snap.Documents() {
		order = append(order, doc.ID)
	}
	assert.Equal(t, []string{"ideas", "2024-03-01", "2024-01-02"}, order)

	t.Run("date recomputed from identifier", func(t *testing.T) {
		doc := snap.Document("2024-03-01")
		require.NotNil(t, doc)
		assert.True(t, doc.Dated())

		loose := snap.Document("ideas")
		require.NotNil(t, loose)
		assert.False(t, loose.Dated())
	})

	t.Run("unknown identifier", func(t *testing.T) {
		assert.Nil(t, snap.Document("2020-01-01"))
	})
}

func TestBuild_Postings(t *testing.T) {
	docs := []core.Document{
		{ID: "2024-01-02", Content: "alpha beta alpha"},
		{ID: "2024-01-05", Content: "beta gamma"},
	}

	snap, err := Build(docs, core.FactSet{})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, snap.Terms())
	assert.Equal(t, 3, snap.TermCount())

	assert.Equal(t, []Posting{{DocID: "2024-01-02", Count: 2}}, snap.Postings("alpha"))

	// Posting lists follow descending identifier order.
	assert.Equal(t, []Posting{
		{DocID: "2024-01-05", Count: 1},
		{DocID: "2024-01-02", Count: 1},
	}, snap.Postings("beta"))

	assert.Nil(t, snap.Postings("delta"))
}

func TestBuild_DuplicateKeepsLatest(t *testing.T) {
	docs := []core.Document{
		{ID: "2024-01-02", Content: "earlier draft"},
		{ID: "2024-01-02", Content: "final version"},
	}

	snap, err := Build(docs, core.FactSet{})
	require.NoError(t, err)

	assert.Equal(t, 1, snap.DocumentCount())
	assert.NotNil(t, snap.Postings("final"))
	assert.Nil(t, snap.Postings("earlier"))
}

func TestBuild_SkipsInvalidRecords(t *testing.T) {
	docs := []core.Document{
		{ID: "", Content: "orphaned"},
		{ID: "2024-01-02", Content: "kept"},
	}
	facts := core.FactSet{
		Facts: map[core.FactCategory][]core.Fact{
			core.CategoryDecisions: {
				{Content: "chose the boring stack"},
				{Content: ""},
				{Content: "dropped the rewrite"},
			},
		},
	}

	snap, err := Build(docs, facts)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.DocumentCount())
	assert.Equal(t, 2, snap.FactCount())

	// Ordinals address the kept list, no holes.
	kept := snap.Facts(core.CategoryDecisions)
	require.Len(t, kept, 2)
	assert.Equal(t, "chose the boring stack", kept[0].Content)
	assert.Equal(t, "dropped the rewrite", kept[1].Content)

	second := snap.Fact(FactRef{Category: core.CategoryDecisions, Ordinal: 1})
	require.NotNil(t, second)
	assert.Equal(t, "dropped the rewrite", second.Content)
	assert.NotEmpty(t, second.Hash)

	assert.Nil(t, snap.Fact(FactRef{Category: core.CategoryDecisions, Ordinal: 2}))
	assert.Nil(t, snap.Fact(FactRef{Category: core.CategoryGoals, Ordinal: 0}))
}

func TestBuild_Empty(t *testing.T) {
	snap, err := Build(nil, core.FactSet{})
	require.NoError(t, err)

	assert.Equal(t, 0, snap.DocumentCount())
	assert.Equal(t, 0, snap.TermCount())
	assert.Equal(t, 0, snap.FactCount())
	assert.Empty(t, snap.DocumentCandidates([]string{"anything"}))
	assert.Empty(t, snap.FactCandidates([]string{"anything"}))

	stats := snap.Stats()
	assert.Equal(t, 0, stats.Documents)
	assert.Len(t, stats.FactCounts, len(core.Categories()))
}

func TestDocumentCandidates(t *testing.T) {
	docs := []core.Document{
		{ID: "2024-01-01", Content: "kubernetes migration plan"},
		{ID: "2024-01-02", Content: "grocery list"},
		{ID: "notes", Content: "the kube cluster is flaky"},
	}

	snap, err := Build(docs, core.FactSet{})
	require.NoError(t, err)

	t.Run("exact and partial term relations", func(t *testing.T) {
		// "kubernetes" matches itself in one document and contains the
		// term "kube" of another.
		got := snap.DocumentCandidates([]string{"kubernetes"})
		assert.Equal(t, []string{"notes", "2024-01-01"}, got)
	})

	t.Run("token inside a longer term", func(t *testing.T) {
		got := snap.DocumentCandidates([]string{"migrat"})
		assert.Equal(t, []string{"2024-01-01"}, got)
	})

	t.Run("no relation", func(t *testing.T) {
		assert.Empty(t, snap.DocumentCandidates([]string{"zzz"}))
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.Empty(t, snap.DocumentCandidates(nil))
	})
}

func TestFactCandidates(t *testing.T) {
	facts := core.FactSet{
		Facts: map[core.FactCategory][]core.Fact{
			core.CategoryDecisions: {{Content: "switched to kubernetes"}},
			core.CategoryGoals:     {{Content: "run every morning"}},
		},
	}

	snap, err := Build(nil, facts)
	require.NoError(t, err)

	got := snap.FactCandidates([]string{"kube"})
	assert.Equal(t, []FactRef{{Category: core.CategoryDecisions, Ordinal: 0}}, got)

	got = snap.FactCandidates([]string{"running"})
	assert.Equal(t, []FactRef{{Category: core.CategoryGoals, Ordinal: 0}}, got)

	assert.Empty(t, snap.FactCandidates([]string{"zzz"}))
}

func TestBuild_Deterministic(t *testing.T) {
	docs := []core.Document{
		{ID: "2024-01-01", Content: "alpha beta gamma delta"},
		{ID: "2024-01-02", Content: "beta beta epsilon"},
		{ID: "scratch", Content: "gamma alpha"},
	}
	facts := core.FactSet{
		Facts: map[core.FactCategory][]core.Fact{
			core.CategoryLearnings: {{Content: "alpha teaches beta"}},
		},
	}

	first, err := Build(docs, facts, WithPoolSize(1))
	require.NoError(t, err)
	second, err := Build(docs, facts, WithPoolSize(8))
	require.NoError(t, err)

	assert.NotEqual(t, first.BuildID(), second.BuildID())
	assert.Equal(t, first.Terms(), second.Terms())
	for _, term := range first.Terms() {
		assert.Equal(t, first.Postings(term), second.Postings(term), "term %q", term)
	}
	assert.Equal(t, first.FactTerms(), second.FactTerms())
	assert.Equal(t,
		first.DocumentCandidates([]string{"beta"}),
		second.DocumentCandidates([]string{"beta"}))
}

func TestBuild_Options(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	snap, err := Build(nil, core.FactSet{},
		WithFingerprint("abc123"),
		WithClock(func() time.Time { return at }),
	)
	require.NoError(t, err)

	assert.Equal(t, "abc123", snap.Fingerprint())
	assert.Equal(t, at, snap.BuiltAt())
}

func TestEmptySnapshot(t *testing.T) {
	snap := Empty()
	assert.Same(t, Empty(), snap)

	assert.Equal(t, 0, snap.DocumentCount())
	assert.Nil(t, snap.Document("2024-01-01"))
	assert.Nil(t, snap.Postings("alpha"))
	assert.Empty(t, snap.DocumentCandidates([]string{"alpha"}))

	for range snap.Documents() {
		t.Fatal("empty snapshot yielded a document")
	}
}

func TestRestore(t *testing.T) {
	data := SnapshotData{
		BuildID:     "build-1",
		BuiltAt:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Fingerprint: "fp-1",
		LastUpdated: time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC),
		Documents: []core.Document{
			{ID: "2024-01-02", Content: "beta beta", WordCount: 2},
			{ID: "2024-01-05", Content: "alpha beta", WordCount: 2},
		},
		Postings: []TermPostings{
			// Deliberately out of registry order.
			{Term: "beta", Postings: []Posting{
				{DocID: "2024-01-02", Count: 2},
				{DocID: "2024-01-05", Count: 1},
			}},
			{Term: "alpha", Postings: []Posting{{DocID: "2024-01-05", Count: 1}}},
		},
		Facts: map[core.FactCategory][]core.Fact{
			core.CategoryHabits: {{Content: "morning pages", Hash: "aabbccdd"}},
		},
		FactRefs: []TermFactRefs{
			{Term: "morning", Refs: []FactRef{{Category: core.CategoryHabits, Ordinal: 0}}},
			{Term: "pages", Refs: []FactRef{{Category: core.CategoryHabits, Ordinal: 0}}},
		},
	}

	snap := Restore(data)

	assert.Equal(t, "build-1", snap.BuildID())
	assert.Equal(t, data.BuiltAt, snap.BuiltAt())
	assert.Equal(t, "fp-1", snap.Fingerprint())
	assert.Equal(t, data.LastUpdated, snap.FactLastUpdated())

	var order []string
	for doc := range snap.Documents() {
		order = append(order, doc.ID)
		assert.True(t, doc.Dated(), "date must be recomputed on restore")
	}
	assert.Equal(t, []string{"2024-01-05", "2024-01-02"}, order)

	assert.Equal(t, []string{"alpha", "beta"}, snap.Terms())
	assert.Equal(t, []Posting{
		{DocID: "2024-01-05", Count: 1},
		{DocID: "2024-01-02", Count: 2},
	}, snap.Postings("beta"), "posting lists are re-sorted into registry order")

	assert.Equal(t, 1, snap.FactCount())
	assert.Equal(t, []string{"morning", "pages"}, snap.FactTerms())
	assert.Equal(t, []string{"2024-01-05", "2024-01-02"}, snap.DocumentCandidates([]string{"beta"}))
}
