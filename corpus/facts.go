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
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/poiesic/recall/core"
)

// factStoreFile mirrors the JSON layout of the fact store on disk.
type factStoreFile struct {
	LastUpdated string                 `json:"last_updated"`
	Facts       map[string][]factEntry `json:"facts"`
}

type factEntry struct {
	Content       string `json:"content"`
	DateExtracted string `json:"date_extracted"`
	Timestamp     string `json:"timestamp"`
	Hash          string `json:"hash"`
}

// timestampLayouts covers RFC 3339 with and without sub-seconds plus the
// zone-less ISO form older fact stores carry.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// LoadFacts reads the fact store. A missing or malformed store degrades to
// an empty fact set so document search keeps working.
func (s *Scanner) LoadFacts(ctx context.Context) (core.FactSet, error) {
	if err := ctx.Err(); err != nil {
		return core.FactSet{}, err
	}

	data, err := os.ReadFile(s.factPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("fact store absent", "path", s.factPath)
		} else {
			s.logger.Warn("fact store unreadable, continuing without facts", "path", s.factPath, "err", err)
		}
		return core.FactSet{}, nil
	}

	var file factStoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Warn("fact store malformed, continuing without facts", "path", s.factPath, "err", err)
		return core.FactSet{}, nil
	}

	set := core.FactSet{
		Facts:       make(map[core.FactCategory][]core.Fact),
		LastUpdated: parseTimestamp(file.LastUpdated),
	}
	for name, entries := range file.Facts {
		category, err := core.ParseFactCategory(name)
		if err != nil {
			s.logger.Warn("skipping unknown fact category", "category", name)
			continue
		}

		for _, entry := range entries {
			if entry.Content == "" {
				s.logger.Warn("skipping empty fact", "category", name)
				continue
			}

			hash := entry.Hash
			if hash == "" {
				hash = core.ShortHash(entry.Content)
			}
			set.Facts[category] = append(set.Facts[category], core.Fact{
				Content:       entry.Content,
				DateExtracted: entry.DateExtracted,
				Hash:          hash,
				Timestamp:     parseTimestamp(entry.Timestamp),
			})
		}
	}

	return set, nil
}

// parseTimestamp tries each known layout and falls back to the zero time.
func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
