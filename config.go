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


package recall

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/recall/corpus"
	"github.com/poiesic/recall/search"
)

// ConfigFileName is the workspace-local configuration file.
const ConfigFileName = "recall.yaml"

// Config holds workspace configuration. Relative paths resolve against the
// workspace root.
type Config struct {
	Workspace    string       `yaml:"-"`
	MemoryDir    string       `yaml:"memory_dir"`
	FactStore    string       `yaml:"fact_store"`
	ReservedName string       `yaml:"reserved_name"`
	Cache        CacheConfig  `yaml:"cache"`
	Search       SearchConfig `yaml:"search"`
}

// CacheConfig controls the on-disk snapshot cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SearchConfig tunes ranking weights and snippet presentation.
type SearchConfig struct {
	ExactPhraseWeight  float64 `yaml:"exact_phrase_weight"`
	TokenMatchWeight   float64 `yaml:"token_match_weight"`
	PartialMatchWeight float64 `yaml:"partial_match_weight"`
	HeadingMatchWeight float64 `yaml:"heading_match_weight"`
	SnippetWindow      int     `yaml:"snippet_window"`
	MaxSnippets        int     `yaml:"max_snippets"`
}

// DefaultConfig returns the configuration used when no recall.yaml exists.
func DefaultConfig(workspace string) *Config {
	weights := search.DefaultWeights()
	return &Config{
		Workspace:    workspace,
		MemoryDir:    "memory",
		FactStore:    "long_term_memory.json",
		ReservedName: corpus.DefaultReservedName,
		Cache: CacheConfig{
			Enabled: true,
			Path:    ".recall",
		},
		Search: SearchConfig{
			ExactPhraseWeight:  weights.ExactPhrase,
			TokenMatchWeight:   weights.TokenMatch,
			PartialMatchWeight: weights.PartialMatch,
			HeadingMatchWeight: weights.HeadingMatch,
			SnippetWindow:      search.DefaultSnippetWindow,
			MaxSnippets:        search.DefaultMaxSnippets,
		},
	}
}

// LoadConfig reads recall.yaml from the workspace, falling back to defaults
// when the file is absent. Settings omitted from the file keep their
// default values.
func LoadConfig(workspace string) (*Config, error) {
	if workspace == "" {
		return nil, ErrWorkspaceRequired
	}

	cfg := DefaultConfig(workspace)
	data, err := os.ReadFile(filepath.Join(workspace, ConfigFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.Workspace = workspace

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validation rules:
//   - memory_dir must not be empty
//   - fact_store must not be empty
//   - cache.path must not be empty when the cache is enabled
func (c *Config) validate() error {
	if c.MemoryDir == "" {
		return fmt.Errorf("%w: memory_dir must not be empty", ErrInvalidConfig)
	}
	if c.FactStore == "" {
		return fmt.Errorf("%w: fact_store must not be empty", ErrInvalidConfig)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path must not be empty when the cache is enabled", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) memoryDir() string { return c.resolve(c.MemoryDir) }

func (c *Config) factPath() string { return c.resolve(c.FactStore) }

func (c *Config) cachePath() string { return c.resolve(c.Cache.Path) }

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Workspace, path)
}

func (c *Config) weights() search.Weights {
	return search.Weights{
		ExactPhrase:  c.Search.ExactPhraseWeight,
		TokenMatch:   c.Search.TokenMatchWeight,
		PartialMatch: c.Search.PartialMatchWeight,
		HeadingMatch: c.Search.HeadingMatchWeight,
	}
}
