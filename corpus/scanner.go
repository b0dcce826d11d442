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


package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/search"
)

// DefaultReservedName is the stem of the aggregate overview file that lives
// alongside the dated notes but is never indexed.
const DefaultReservedName = "MEMORY"

// Scanner reads a memory workspace: top-level markdown notes under the
// memory directory plus the JSON fact store next to it.
type Scanner struct {
	memoryDir    string
	factPath     string
	reservedName string
	logger       *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner) error

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithReservedName overrides the stem excluded from scanning.
func WithReservedName(name string) ScannerOption {
	return func(s *Scanner) error {
		if name == "" {
			name = DefaultReservedName
		}
		s.reservedName = name
		return nil
	}
}

// NewScanner creates a scanner over the given memory directory and fact
// store path. Neither needs to exist yet; missing files simply scan empty.
func NewScanner(memoryDir, factPath string, opts ...ScannerOption) (*Scanner, error) {
	if memoryDir == "" {
		return nil, ErrMemoryDirRequired
	}
	if factPath == "" {
		return nil, ErrFactPathRequired
	}

	s := &Scanner{
		memoryDir:    memoryDir,
		factPath:     factPath,
		reservedName: DefaultReservedName,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

var _ search.Source = (*Scanner)(nil)

// MemoryDir returns the directory holding the markdown notes.
func (s *Scanner) MemoryDir() string { return s.memoryDir }

// FactPath returns the location of the fact store file.
func (s *Scanner) FactPath() string { return s.factPath }

// ScanDocuments reads every top-level markdown note in the memory directory.
// The reserved overview file is skipped, as is anything that cannot be read.
// A missing directory yields no documents and no error.
func (s *Scanner) ScanDocuments(ctx context.Context) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.memoryDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("memory directory absent", "dir", s.memoryDir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read memory directory: %w", err)
	}

	var documents []core.Document
	for _, entry := range entries {
		stem, ok := s.noteStem(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.memoryDir, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable memory file", "file", entry.Name(), "err", err)
			continue
		}

		content := string(data)
		documents = append(documents, core.Document{
			ID:        stem,
			Content:   content,
			WordCount: len(strings.Fields(content)),
			Date:      core.ParseDateID(stem),
		})
	}

	return documents, nil
}

// noteStem returns the identifier a markdown file would be indexed under,
// or false when the file is not an indexable note.
func (s *Scanner) noteStem(name string) (string, bool) {
	stem, found := strings.CutSuffix(name, ".md")
	if !found || stem == s.reservedName {
		return "", false
	}
	return stem, true
}
