package recall

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, workspace, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, ConfigFileName), []byte(content), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/ws")

	assert.Equal(t, "/tmp/ws", cfg.Workspace)
	assert.Equal(t, "memory", cfg.MemoryDir)
	assert.Equal(t, "long_term_memory.json", cfg.FactStore)
	assert.Equal(t, "MEMORY", cfg.ReservedName)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".recall", cfg.Cache.Path)
	assert.Equal(t, 10.0, cfg.Search.ExactPhraseWeight)
	assert.Equal(t, 2.0, cfg.Search.TokenMatchWeight)
	assert.Equal(t, 0.5, cfg.Search.PartialMatchWeight)
	assert.Equal(t, 3.0, cfg.Search.HeadingMatchWeight)
	assert.Equal(t, 100, cfg.Search.SnippetWindow)
	assert.Equal(t, 3, cfg.Search.MaxSnippets)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	workspace := t.TempDir()

	cfg, err := LoadConfig(workspace)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(workspace), cfg)
}

func TestLoadConfig_EmptyWorkspace(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrWorkspaceRequired)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	workspace := t.TempDir()
	writeConfig(t, workspace, `
memory_dir: notes
reserved_name: OVERVIEW
cache:
  enabled: false
search:
  snippet_window: 50
`)

	cfg, err := LoadConfig(workspace)
	require.NoError(t, err)

	assert.Equal(t, workspace, cfg.Workspace)
	assert.Equal(t, "notes", cfg.MemoryDir)
	assert.Equal(t, "OVERVIEW", cfg.ReservedName)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 50, cfg.Search.SnippetWindow)

	// Settings absent from the file keep their defaults
	assert.Equal(t, "long_term_memory.json", cfg.FactStore)
	assert.Equal(t, ".recall", cfg.Cache.Path)
	assert.Equal(t, 10.0, cfg.Search.ExactPhraseWeight)
	assert.Equal(t, 3, cfg.Search.MaxSnippets)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		workspace := t.TempDir()
		writeConfig(t, workspace, "memory_dir: [unclosed")

		_, err := LoadConfig(workspace)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("empty memory dir", func(t *testing.T) {
		workspace := t.TempDir()
		writeConfig(t, workspace, `memory_dir: ""`)

		_, err := LoadConfig(workspace)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("empty fact store", func(t *testing.T) {
		workspace := t.TempDir()
		writeConfig(t, workspace, `fact_store: ""`)

		_, err := LoadConfig(workspace)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("cache enabled without path", func(t *testing.T) {
		workspace := t.TempDir()
		writeConfig(t, workspace, "cache:\n  enabled: true\n  path: \"\"")

		_, err := LoadConfig(workspace)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfig_PathResolution(t *testing.T) {
	cfg := DefaultConfig("/srv/workspace")

	assert.Equal(t, filepath.Join("/srv/workspace", "memory"), cfg.memoryDir())
	assert.Equal(t, filepath.Join("/srv/workspace", "long_term_memory.json"), cfg.factPath())
	assert.Equal(t, filepath.Join("/srv/workspace", ".recall"), cfg.cachePath())

	cfg.MemoryDir = "/var/notes"
	assert.Equal(t, "/var/notes", cfg.memoryDir(), "absolute paths pass through")
}

func TestConfig_Weights(t *testing.T) {
	cfg := DefaultConfig("/tmp/ws")
	cfg.Search.TokenMatchWeight = 5

	w := cfg.weights()
	assert.Equal(t, 10.0, w.ExactPhrase)
	assert.Equal(t, 5.0, w.TokenMatch)
	assert.Equal(t, 0.5, w.PartialMatch)
	assert.Equal(t, 3.0, w.HeadingMatch)
}
