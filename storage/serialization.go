// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/index"
)

// zeroTimeMark stands in for the zero time.Time on the wire.
const zeroTimeMark = math.MinInt64

// SnapshotMeta records the identity and shape of a persisted snapshot.
type SnapshotMeta struct {
	BuildID     string
	Fingerprint string
	BuiltAt     time.Time
	LastUpdated time.Time
	Documents   int
	Facts       int
}

// MarshalDocument serializes a Document to bytes. The document date is not
// written; it derives from the identifier on restore.
func MarshalDocument(doc *core.Document) []byte {
	size := ord.String.Size(doc.ID) +
		ord.String.Size(doc.Content) +
		varint.Int.Size(doc.WordCount)
	bs := make([]byte, size)
	n := ord.String.Marshal(doc.ID, bs)
	n += ord.String.Marshal(doc.Content, bs[n:])
	varint.Int.Marshal(doc.WordCount, bs[n:])
	return bs
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	id, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	content, skip, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	wordCount, _, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.Document{
		ID:        id,
		Content:   content,
		WordCount: wordCount,
		Date:      core.ParseDateID(id),
	}, nil
}

// MarshalPostings serializes a posting list to bytes.
func MarshalPostings(postings []index.Posting) []byte {
	size := varint.Int.Size(len(postings))
	for _, p := range postings {
		size += ord.String.Size(p.DocID) + varint.Int.Size(p.Count)
	}
	bs := make([]byte, size)
	n := varint.Int.Marshal(len(postings), bs)
	for _, p := range postings {
		n += ord.String.Marshal(p.DocID, bs[n:])
		n += varint.Int.Marshal(p.Count, bs[n:])
	}
	return bs
}

// UnmarshalPostings deserializes a posting list from bytes.
func UnmarshalPostings(data []byte) ([]index.Posting, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data) {
		return nil, fmt.Errorf("%w: posting count %d", ErrTruncatedData, count)
	}
	postings := make([]index.Posting, 0, count)
	for i := 0; i < count; i++ {
		docID, skip, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		n += skip
		hits, skip, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		n += skip
		postings = append(postings, index.Posting{DocID: docID, Count: hits})
	}
	return postings, nil
}

// MarshalFactRefs serializes fact references to bytes.
func MarshalFactRefs(refs []index.FactRef) []byte {
	size := varint.Int.Size(len(refs))
	for _, ref := range refs {
		size += varint.Int.Size(int(ref.Category)) + varint.Int.Size(ref.Ordinal)
	}
	bs := make([]byte, size)
	n := varint.Int.Marshal(len(refs), bs)
	for _, ref := range refs {
		n += varint.Int.Marshal(int(ref.Category), bs[n:])
		n += varint.Int.Marshal(ref.Ordinal, bs[n:])
	}
	return bs
}

// UnmarshalFactRefs deserializes fact references from bytes.
func UnmarshalFactRefs(data []byte) ([]index.FactRef, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data) {
		return nil, fmt.Errorf("%w: fact ref count %d", ErrTruncatedData, count)
	}
	refs := make([]index.FactRef, 0, count)
	for i := 0; i < count; i++ {
		category, skip, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		n += skip
		if err := core.ValidateFactCategory(core.FactCategory(category)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		ordinal, skip, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		n += skip
		refs = append(refs, index.FactRef{Category: core.FactCategory(category), Ordinal: ordinal})
	}
	return refs, nil
}

// MarshalFact serializes a Fact to bytes.
func MarshalFact(fact *core.Fact) []byte {
	size := ord.String.Size(fact.Content) +
		ord.String.Size(fact.DateExtracted) +
		ord.String.Size(fact.Hash) +
		sizeTimestamp(fact.Timestamp)
	bs := make([]byte, size)
	n := ord.String.Marshal(fact.Content, bs)
	n += ord.String.Marshal(fact.DateExtracted, bs[n:])
	n += ord.String.Marshal(fact.Hash, bs[n:])
	marshalTimestamp(fact.Timestamp, bs[n:])
	return bs
}

// UnmarshalFact deserializes a Fact from bytes.
func UnmarshalFact(data []byte) (*core.Fact, error) {
	content, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	dateExtracted, skip, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	hash, skip, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	timestamp, _, err := unmarshalTimestamp(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.Fact{
		Content:       content,
		DateExtracted: dateExtracted,
		Hash:          hash,
		Timestamp:     timestamp,
	}, nil
}

// MarshalSnapshotMeta serializes snapshot metadata to bytes.
func MarshalSnapshotMeta(meta *SnapshotMeta) []byte {
	size := ord.String.Size(meta.BuildID) +
		ord.String.Size(meta.Fingerprint) +
		sizeTimestamp(meta.BuiltAt) +
		sizeTimestamp(meta.LastUpdated) +
		varint.Int.Size(meta.Documents) +
		varint.Int.Size(meta.Facts)
	bs := make([]byte, size)
	n := ord.String.Marshal(meta.BuildID, bs)
	n += ord.String.Marshal(meta.Fingerprint, bs[n:])
	n += marshalTimestamp(meta.BuiltAt, bs[n:])
	n += marshalTimestamp(meta.LastUpdated, bs[n:])
	n += varint.Int.Marshal(meta.Documents, bs[n:])
	varint.Int.Marshal(meta.Facts, bs[n:])
	return bs
}

// UnmarshalSnapshotMeta deserializes snapshot metadata from bytes.
func UnmarshalSnapshotMeta(data []byte) (*SnapshotMeta, error) {
	buildID, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	fingerprint, skip, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	builtAt, skip, err := unmarshalTimestamp(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	lastUpdated, skip, err := unmarshalTimestamp(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	documents, skip, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += skip
	facts, _, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &SnapshotMeta{
		BuildID:     buildID,
		Fingerprint: fingerprint,
		BuiltAt:     builtAt,
		LastUpdated: lastUpdated,
		Documents:   documents,
		Facts:       facts,
	}, nil
}

// Timestamps travel as microseconds since the Unix epoch, with a sentinel
// for the zero time so IsZero survives a round trip.

func sizeTimestamp(t time.Time) int {
	return varint.Int64.Size(timestampValue(t))
}

func marshalTimestamp(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timestampValue(t), bs)
}

func unmarshalTimestamp(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, 0, err
	}
	if v == zeroTimeMark {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func timestampValue(t time.Time) int64 {
	if t.IsZero() {
		return zeroTimeMark
	}
	return t.UnixMicro()
}
