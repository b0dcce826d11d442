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


// Package storage provides the snapshot persistence layer for recall.
//
// This package defines the SnapshotStore interface that decouples snapshot
// caching from the search engine, plus the binary serialization used by
// disk-backed implementations. It allows different backends (BadgerDB,
// in-memory, none at all) to be used interchangeably.
//
// # Architecture
//
//   - SnapshotStore: persistence interface the search engine talks to
//   - Serialization: MUS-encoded records for documents, postings, facts
//     and snapshot metadata
//
// Backends live in subpackages; see storage/badger for the BadgerDB one.
//
// # Usage
//
// Create a store instance:
//
//	store, err := badger.NewSnapshotStore("/path/to/cache")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, _, err := badger.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
