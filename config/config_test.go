package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 10, cfg.Indexing.BatchSize)
	assert.Equal(t, 3, cfg.Indexing.MaxRetries)
	assert.Equal(t, 2, cfg.Indexing.RetryDelaySec)
	assert.Equal(t, 500, cfg.Indexing.BatchPauseMS)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "Cosine", cfg.Qdrant.Distance)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
qdrant:
  url: https://qdrant.example.com:6333
  api_key: file-key
chunking:
  chunk_size: 512
retrieval:
  top_k: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://qdrant.example.com:6333", cfg.Qdrant.URL)
	assert.Equal(t, "file-key", cfg.Qdrant.APIKey)
	assert.Equal(t, 512, cfg.Chunking.ChunkSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	// Untouched fields still get defaults.
	assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 10, cfg.Indexing.BatchSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
qdrant:
  url: https://from-file:6333
  api_key: file-key
`), 0o644))

	t.Setenv("QDRANT_URL", "https://from-env:6333")
	t.Setenv("QDRANT_API_KEY", "env-key")
	t.Setenv("CHUNK_SIZE", "256")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env:6333", cfg.Qdrant.URL)
	assert.Equal(t, "env-key", cfg.Qdrant.APIKey)
	assert.Equal(t, 256, cfg.Chunking.ChunkSize)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qdrant: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QDRANT_URL")
	assert.Contains(t, err.Error(), "QDRANT_API_KEY")
}

func TestValidate_Complete(t *testing.T) {
	t.Setenv("QDRANT_URL", "https://qdrant.example.com:6333")
	t.Setenv("QDRANT_API_KEY", "key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}
