package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taletable/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.TranscriptBackend)
	assert.Equal(t, models.DefaultModelID, cfg.DefaultModel)
	assert.Equal(t, 5, cfg.DefaultWindow)
	assert.InDelta(t, 0.7, cfg.Generation.Temperature, 1e-6)
	assert.InDelta(t, 0.95, cfg.Generation.TopP, 1e-6)
	assert.Equal(t, int32(40), cfg.Generation.TopK)
	assert.Equal(t, 2048, cfg.Generation.MaxOutputTokens)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transcript_backend: sqlite
default_model: gpt-4o
available_models: [gpt-4o, claude-3-5-haiku-latest]
generation:
  temperature: 0.2
  max_output_tokens: 512
`), 0o644))
	t.Setenv("TALETABLE_DEFAULT_WINDOW", "9")
	t.Setenv("TALETABLE_GENERATION_TOP_K", "12")

	cfg, err := load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.TranscriptBackend)
	assert.Equal(t, "gpt-4o", cfg.DefaultModel)
	assert.Equal(t, []string{"gpt-4o", "claude-3-5-haiku-latest"}, cfg.AvailableModels)
	assert.InDelta(t, 0.2, cfg.Generation.Temperature, 1e-6)
	assert.Equal(t, 512, cfg.Generation.MaxOutputTokens)
	assert.Equal(t, int32(12), cfg.Generation.TopK)
	assert.Equal(t, 9, cfg.DefaultWindow)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TALETABLE_TRANSCRIPT_BACKEND", "redis")

	_, err := load(viper.New(), "")
	assert.ErrorContains(t, err, "transcript_backend")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
