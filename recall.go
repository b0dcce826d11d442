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


// Package recall assembles a searchable memory workspace: dated markdown
// notes plus a long-term fact store, indexed for ranked keyword queries.
package recall

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/corpus"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
)

// Workspace wires a corpus scanner, an optional snapshot cache and the
// search engine for one memory workspace.
type Workspace struct {
	config  *Config
	scanner *corpus.Scanner
	store   storage.SnapshotStore
	engine  *search.Engine
	logger  *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger shared by every workspace component.
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open assembles a workspace from its configuration. The index is empty
// until Refresh runs. A cache that cannot be opened degrades to uncached
// operation rather than failing the workspace.
func Open(cfg *Config, opts ...WorkspaceOption) (*Workspace, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if cfg.Workspace == "" {
		return nil, ErrWorkspaceRequired
	}

	// Apply options
	options := &workspaceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	scanner, err := corpus.NewScanner(cfg.memoryDir(), cfg.factPath(),
		corpus.WithLogger(logger), corpus.WithReservedName(cfg.ReservedName))
	if err != nil {
		return nil, err
	}

	var store storage.SnapshotStore
	if cfg.Cache.Enabled {
		s, err := badger.NewSnapshotStore(cfg.cachePath())
		if err != nil {
			logger.Warn("snapshot cache unavailable, continuing without it",
				"path", cfg.cachePath(), "err", err)
		} else {
			store = s
		}
	}

	engineOpts := []search.Option{
		search.WithLogger(logger),
		search.WithWeights(cfg.weights()),
		search.WithSnippetWindow(cfg.Search.SnippetWindow),
		search.WithMaxSnippets(cfg.Search.MaxSnippets),
	}
	if store != nil {
		engineOpts = append(engineOpts, search.WithSnapshotStore(store))
	}

	engine, err := search.NewEngine(scanner, engineOpts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return &Workspace{
		config:  cfg,
		scanner: scanner,
		store:   store,
		engine:  engine,
		logger:  logger,
	}, nil
}

// Engine returns the workspace's search engine.
func (w *Workspace) Engine() *search.Engine {
	return w.engine
}

// Scanner returns the workspace's corpus scanner.
func (w *Workspace) Scanner() *corpus.Scanner {
	return w.scanner
}

// Config returns the configuration the workspace was opened with.
func (w *Workspace) Config() *Config {
	return w.config
}

// Refresh rebuilds the search index from the current workspace state.
func (w *Workspace) Refresh(ctx context.Context) error {
	return w.engine.Rebuild(ctx)
}

// Watch starts a filesystem watcher that refreshes the index after
// workspace changes. The returned watcher runs until Stop is called or
// ctx is cancelled.
func (w *Workspace) Watch(ctx context.Context, opts ...corpus.WatcherOption) (*corpus.Watcher, error) {
	watcher, err := corpus.NewWatcher(w.scanner, func() {
		if err := w.engine.Rebuild(ctx); err != nil {
			w.logger.Error("rebuild after workspace change failed", "err", err)
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		return nil, err
	}
	return watcher, nil
}

// Close releases the workspace's resources.
func (w *Workspace) Close() error {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.logger.Error("error closing snapshot store", "err", err)
			return err
		}
	}
	return nil
}
