package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/index"
	"github.com/poiesic/recall/storage"
)

// SnapshotStore implements storage.SnapshotStore on a BadgerDB backend.
// Only the most recently saved snapshot is retained.
type SnapshotStore struct {
	backend *Backend
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore opens a snapshot store backed by BadgerDB at path.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{backend: backend}, nil
}

// Close closes the underlying backend.
func (s *SnapshotStore) Close() error {
	return s.backend.Close()
}

// Save persists a snapshot under its fingerprint, replacing whatever was
// stored before. Snapshots without a fingerprint have no cache key and are
// ignored.
func (s *SnapshotStore) Save(ctx context.Context, snapshot *index.Snapshot) error {
	if snapshot == nil || snapshot.Fingerprint() == "" {
		return nil
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fingerprint := snapshot.Fingerprint()
	return s.backend.WithTx(func(tx *badger.Txn) error {
		// Drop the previously stored snapshot when a different one replaces it
		previous, err := readCurrentFingerprint(tx)
		if err != nil {
			return err
		}
		if previous != "" && previous != fingerprint {
			if err := deleteSnapshot(tx, previous); err != nil {
				return err
			}
		}

		meta := &storage.SnapshotMeta{
			BuildID:     snapshot.BuildID(),
			Fingerprint: fingerprint,
			BuiltAt:     snapshot.BuiltAt(),
			LastUpdated: snapshot.FactLastUpdated(),
			Documents:   snapshot.DocumentCount(),
			Facts:       snapshot.FactCount(),
		}
		if err := tx.Set(makeMetaKey(fingerprint), storage.MarshalSnapshotMeta(meta)); err != nil {
			return err
		}

		for doc := range snapshot.Documents() {
			if err := tx.Set(makeDocumentKey(fingerprint, doc.ID), storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}

		for _, term := range snapshot.Terms() {
			if err := tx.Set(makeTermKey(fingerprint, term), storage.MarshalPostings(snapshot.Postings(term))); err != nil {
				return err
			}
		}

		for _, term := range snapshot.FactTerms() {
			if err := tx.Set(makeFactTermKey(fingerprint, term), storage.MarshalFactRefs(snapshot.FactRefs(term))); err != nil {
				return err
			}
		}

		for _, category := range core.Categories() {
			for ordinal, fact := range snapshot.Facts(category) {
				if err := tx.Set(makeFactKey(fingerprint, category, ordinal), storage.MarshalFact(&fact)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set([]byte(currentKey), []byte(fingerprint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Load retrieves the snapshot stored under the given fingerprint.
// Returns (nil, nil) when no matching snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, fingerprint string) (*index.Snapshot, error) {
	if fingerprint == "" {
		return nil, nil
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap *index.Snapshot
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		meta, err := readSnapshotMeta(tx, fingerprint)
		if err != nil {
			return err
		}
		if meta == nil {
			return nil
		}

		data := index.SnapshotData{
			BuildID:     meta.BuildID,
			BuiltAt:     meta.BuiltAt,
			Fingerprint: meta.Fingerprint,
			LastUpdated: meta.LastUpdated,
			Facts:       make(map[core.FactCategory][]core.Fact),
		}

		if err := readDocuments(tx, fingerprint, &data); err != nil {
			return err
		}
		if err := readPostings(tx, fingerprint, &data); err != nil {
			return err
		}
		if err := readFactRefs(tx, fingerprint, &data); err != nil {
			return err
		}
		if err := readFacts(tx, fingerprint, &data); err != nil {
			return err
		}

		factTotal := 0
		for _, list := range data.Facts {
			factTotal += len(list)
		}
		if len(data.Documents) != meta.Documents || factTotal != meta.Facts {
			return fmt.Errorf("%w: stored %d documents and %d facts, metadata says %d and %d",
				storage.ErrInvalidSnapshot, len(data.Documents), factTotal, meta.Documents, meta.Facts)
		}

		snap = index.Restore(data)
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Helper methods

// readCurrentFingerprint reads the fingerprint of the stored snapshot.
func readCurrentFingerprint(tx *badger.Txn) (string, error) {
	item, err := tx.Get([]byte(currentKey))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return "", nil
		}
		return "", err
	}

	var fingerprint string
	err = item.Value(func(val []byte) error {
		fingerprint = string(val)
		return nil
	})
	return fingerprint, err
}

// readSnapshotMeta reads snapshot metadata from the transaction.
func readSnapshotMeta(tx *badger.Txn, fingerprint string) (*storage.SnapshotMeta, error) {
	item, err := tx.Get(makeMetaKey(fingerprint))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var meta *storage.SnapshotMeta
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		meta, unmarshalErr = storage.UnmarshalSnapshotMeta(val)
		return unmarshalErr
	})
	return meta, err
}

// readDocuments loads every document record for a snapshot.
func readDocuments(tx *badger.Txn, fingerprint string, data *index.SnapshotData) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefixKey(documentPrefix, fingerprint)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			doc, err := storage.UnmarshalDocument(val)
			if err != nil {
				return err
			}
			data.Documents = append(data.Documents, *doc)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readPostings loads every term posting list for a snapshot.
// The term is recovered from the key suffix.
func readPostings(tx *badger.Txn, fingerprint string, data *index.SnapshotData) error {
	prefix := prefixKey(termPrefix, fingerprint)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		term := string(item.Key()[len(prefix):])
		err := item.Value(func(val []byte) error {
			postings, err := storage.UnmarshalPostings(val)
			if err != nil {
				return err
			}
			data.Postings = append(data.Postings, index.TermPostings{Term: term, Postings: postings})
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readFactRefs loads every fact term reference list for a snapshot.
func readFactRefs(tx *badger.Txn, fingerprint string, data *index.SnapshotData) error {
	prefix := prefixKey(factTermPrefix, fingerprint)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		term := string(item.Key()[len(prefix):])
		err := item.Value(func(val []byte) error {
			refs, err := storage.UnmarshalFactRefs(val)
			if err != nil {
				return err
			}
			data.FactRefs = append(data.FactRefs, index.TermFactRefs{Term: term, Refs: refs})
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readFacts loads every stored fact for a snapshot. Keys sort by category
// then ordinal, so appends land in registry order.
func readFacts(tx *badger.Txn, fingerprint string, data *index.SnapshotData) error {
	prefix := prefixKey(factPrefix, fingerprint)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		category, ordinal, ok := splitFactKey(item.Key(), len(prefix))
		if !ok {
			return fmt.Errorf("%w: malformed fact key", storage.ErrInvalidSnapshot)
		}
		if err := core.ValidateFactCategory(category); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidSnapshot, err)
		}
		err := item.Value(func(val []byte) error {
			fact, err := storage.UnmarshalFact(val)
			if err != nil {
				return err
			}
			if ordinal != len(data.Facts[category]) {
				return fmt.Errorf("%w: fact ordinal %d out of sequence", storage.ErrInvalidSnapshot, ordinal)
			}
			data.Facts[category] = append(data.Facts[category], *fact)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// deleteSnapshot removes every key belonging to a stored snapshot.
func deleteSnapshot(tx *badger.Txn, fingerprint string) error {
	keys := [][]byte{makeMetaKey(fingerprint)}

	for _, section := range []string{documentPrefix, termPrefix, factTermPrefix, factPrefix} {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefixKey(section, fingerprint)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()
	}

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
