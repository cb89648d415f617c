package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "store:\n  type: local\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 150, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 0.3, cfg.RAG.MatchThreshold)
	assert.Equal(t, 5, cfg.RAG.MatchCount)
	assert.Equal(t, 0.7, cfg.RAG.SemanticWeight)
	assert.Equal(t, 3, cfg.RAG.MaxRetries)
	assert.Equal(t, "pdf_pages", cfg.Store.Collection)
	assert.Equal(t, "./data", cfg.DataDir)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("SUPABASE_URL", "postgres://env-host/db")
	t.Setenv("SUPABASE_KEY", "env-key")
	t.Setenv("OPENROUTER_KEY", "env-router-key")

	path := writeConfig(t, `
store:
  type: supabase
  supabase_url: postgres://file-host/db
llm:
  openrouter_key: file-key
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-host/db", cfg.Store.SupabaseURL)
	assert.Equal(t, "env-key", cfg.Store.SupabaseKey)
	assert.Equal(t, "env-router-key", cfg.LLM.OpenRouterKey)
}

func TestValidateStore_MissingCredentials(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Type: "supabase"}}

	err := cfg.ValidateStore()
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingCredentials))
}

func TestValidateStore_LocalNeedsNoCredentials(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Type: "local"}}
	assert.NoError(t, cfg.ValidateStore())
}
