package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "llama3.2:1b", cfg.Model)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "http://localhost:11434", cfg.BaseURL)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, "chromem", cfg.StoreType)
	assert.Equal(t, "chroma_db", cfg.StorePath)
	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 4, cfg.TopK)
}

func TestLoadExplicitConfigMissing(t *testing.T) {
	t.Setenv("RAGGY_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raggy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":"from-file","top_k":9}`), 0644))

	t.Setenv("RAGGY_CONFIG", path)
	t.Setenv("RAGGY_MODEL", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	// Environment beats the file, the file beats the defaults.
	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, 9, cfg.TopK)
	assert.Equal(t, "chromem", cfg.StoreType)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := Default()
	cfg.Model = "saved-model"
	cfg.Timeout = 30 * time.Second
	require.NoError(t, cfg.Save(path))

	t.Setenv("RAGGY_CONFIG", path)
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "saved-model", loaded.Model)
	assert.Equal(t, 30*time.Second, loaded.Timeout)
}
