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
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint digests the name, size and modification time of every file a
// scan would read. Equal fingerprints mean the workspace is unchanged, so a
// cached snapshot can be served instead of rebuilding.
func (s *Scanner) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h, err := blake2b.New(8, nil)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(s.memoryDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read memory directory: %w", err)
	}
	for _, entry := range entries {
		if _, ok := s.noteStem(entry.Name()); !ok || entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fmt.Fprintf(h, "%s|%d|%d\n", entry.Name(), info.Size(), info.ModTime().UnixNano())
	}

	if info, err := os.Stat(s.factPath); err == nil {
		fmt.Fprintf(h, "%s|%d|%d\n", filepath.Base(s.factPath), info.Size(), info.ModTime().UnixNano())
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
