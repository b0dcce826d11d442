package storage

import (
	"context"

	"github.com/poiesic/recall/index"
)

// SnapshotStore persists built index snapshots between runs so an unchanged
// workspace can skip rebuilding. Implementations must be thread-safe and
// support concurrent access.
type SnapshotStore interface {
	// Save persists a snapshot under its fingerprint.
	// Any previously stored snapshot is replaced.
	Save(ctx context.Context, snapshot *index.Snapshot) error

	// Load retrieves the snapshot stored under the given fingerprint.
	// Returns (nil, nil) when no matching snapshot exists.
	Load(ctx context.Context, fingerprint string) (*index.Snapshot, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
