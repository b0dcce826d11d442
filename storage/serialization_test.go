package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/index"
)

func TestMarshalUnmarshalDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  *core.Document
	}{
		{
			name: "dated document",
			doc: &core.Document{
				ID:        "2024-01-02",
				Content:   "decided to switch jobs today",
				WordCount: 5,
			},
		},
		{
			name: "undated document",
			doc: &core.Document{
				ID:        "ideas",
				Content:   "kubernetes migration notes",
				WordCount: 3,
			},
		},
		{
			name: "empty content",
			doc: &core.Document{
				ID:        "2024-02-01",
				Content:   "",
				WordCount: 0,
			},
		},
		{
			name: "unicode content",
			doc: &core.Document{
				ID:        "2024-03-01",
				Content:   "déjeuner avec l'équipe 世界",
				WordCount: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalDocument(tt.doc)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalDocument(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.doc.ID, decoded.ID)
			assert.Equal(t, tt.doc.Content, decoded.Content)
			assert.Equal(t, tt.doc.WordCount, decoded.WordCount)
			assert.True(t, core.ParseDateID(tt.doc.ID).Equal(decoded.Date),
				"date must derive from the identifier")
		})
	}
}

func TestUnmarshalDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDocument(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalPostings(t *testing.T) {
	tests := []struct {
		name     string
		postings []index.Posting
	}{
		{
			name: "single posting",
			postings: []index.Posting{
				{DocID: "2024-01-02", Count: 3},
			},
		},
		{
			name: "multiple postings keep order",
			postings: []index.Posting{
				{DocID: "2024-03-01", Count: 1},
				{DocID: "2024-01-02", Count: 7},
				{DocID: "ideas", Count: 2},
			},
		},
		{
			name:     "empty list",
			postings: []index.Posting{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPostings(tt.postings)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalPostings(data)
			require.NoError(t, err)
			assert.Equal(t, tt.postings, decoded)
		})
	}
}

func TestUnmarshalPostings_Invalid(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalPostings([]byte{})
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("impossible count", func(t *testing.T) {
		_, err := UnmarshalPostings([]byte{0x09})
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("truncated entries", func(t *testing.T) {
		data := MarshalPostings([]index.Posting{{DocID: "2024-01-02", Count: 3}})
		_, err := UnmarshalPostings(data[:len(data)-4])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestMarshalUnmarshalFactRefs(t *testing.T) {
	refs := []index.FactRef{
		{Category: core.CategoryDecisions, Ordinal: 0},
		{Category: core.CategoryHabits, Ordinal: 12},
		{Category: core.CategoryOther, Ordinal: 3},
	}

	data := MarshalFactRefs(refs)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalFactRefs(data)
	require.NoError(t, err)
	assert.Equal(t, refs, decoded)
}

func TestUnmarshalFactRefs_Invalid(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		// count 1, category 20, ordinal 0
		_, err := UnmarshalFactRefs([]byte{0x02, 0x28, 0x00})
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("impossible count", func(t *testing.T) {
		_, err := UnmarshalFactRefs([]byte{0x09})
		assert.ErrorIs(t, err, ErrTruncatedData)
	})
}

func TestMarshalUnmarshalFact(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		fact *core.Fact
	}{
		{
			name: "full fact",
			fact: &core.Fact{
				Content:       "decided to use postgres",
				DateExtracted: "2024-01-15",
				Hash:          "ab12cd34",
				Timestamp:     now,
			},
		},
		{
			name: "zero timestamp",
			fact: &core.Fact{
				Content:       "runs every morning",
				DateExtracted: "2024-01-20",
				Hash:          "99fe01aa",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalFact(tt.fact)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalFact(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.fact.Content, decoded.Content)
			assert.Equal(t, tt.fact.DateExtracted, decoded.DateExtracted)
			assert.Equal(t, tt.fact.Hash, decoded.Hash)
			assert.True(t, tt.fact.Timestamp.Equal(decoded.Timestamp))
			assert.Equal(t, tt.fact.Timestamp.IsZero(), decoded.Timestamp.IsZero())
		})
	}
}

func TestUnmarshalFact_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalFact(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalSnapshotMeta(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		meta *SnapshotMeta
	}{
		{
			name: "full meta",
			meta: &SnapshotMeta{
				BuildID:     "0c9a7982-6a1f-4f2e-9b3e-0a1d2c3e4f50",
				Fingerprint: "8f14e45fceea167a",
				BuiltAt:     now,
				LastUpdated: now.Add(-time.Hour),
				Documents:   42,
				Facts:       7,
			},
		},
		{
			name: "no facts",
			meta: &SnapshotMeta{
				BuildID:     "11111111-2222-3333-4444-555555555555",
				Fingerprint: "deadbeefdeadbeef",
				BuiltAt:     now,
				Documents:   3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalSnapshotMeta(tt.meta)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalSnapshotMeta(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.meta.BuildID, decoded.BuildID)
			assert.Equal(t, tt.meta.Fingerprint, decoded.Fingerprint)
			assert.True(t, tt.meta.BuiltAt.Equal(decoded.BuiltAt))
			assert.True(t, tt.meta.LastUpdated.Equal(decoded.LastUpdated))
			assert.Equal(t, tt.meta.LastUpdated.IsZero(), decoded.LastUpdated.IsZero())
			assert.Equal(t, tt.meta.Documents, decoded.Documents)
			assert.Equal(t, tt.meta.Facts, decoded.Facts)
		})
	}
}

func TestUnmarshalSnapshotMeta_Invalid(t *testing.T) {
	_, err := UnmarshalSnapshotMeta([]byte{0xFF, 0xFF})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestTimestampRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		original := &core.Fact{
			Content:       "cycles must not drift",
			DateExtracted: "2024-02-02",
			Hash:          "0011aabb",
			Timestamp:     time.Date(2024, 2, 2, 10, 30, 0, 250000, time.UTC),
		}

		current := original
		for i := 0; i < 3; i++ {
			data := MarshalFact(current)
			decoded, err := UnmarshalFact(data)
			require.NoError(t, err)
			current = decoded
		}

		assert.Equal(t, original.Content, current.Content)
		assert.True(t, original.Timestamp.Equal(current.Timestamp))
	})
}
