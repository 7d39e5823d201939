package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Limits.MaxTokenLimit)
	assert.Equal(t, 25, cfg.Limits.MaxRequestLimit)
	assert.Equal(t, 3, cfg.Tools.MaxConcurrent)
	assert.Equal(t, 100, cfg.Tools.StaggerDelayMs)
	assert.False(t, cfg.Tools.DisableParallel)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"backend": {"model": "custom-model", "base_url": "https://llm.example.com/v1"},
		"limits": {"max_token_limit": 9000},
		"tools": {"max_concurrent": 5}
	}`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-model", cfg.Backend.Model)
	assert.Equal(t, "https://llm.example.com/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 9000, cfg.Limits.MaxTokenLimit)
	assert.Equal(t, 25, cfg.Limits.MaxRequestLimit, "untouched fields keep defaults")
	assert.Equal(t, 5, cfg.Tools.MaxConcurrent)
	assert.Equal(t, 100, cfg.Tools.StaggerDelayMs)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{"backend": {"model": "m"}, "frobnicate": true}`)

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `{"limits": {"max_token_limit": -5}}`)

	_, err := NewLoader().Load(path)
	require.Error(t, err)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "MaxTokenLimit", verr.Field)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TURNPIKE_MODEL", "env-model")
	t.Setenv("TURNPIKE_MAX_TOKEN_LIMIT", "1234")
	t.Setenv("TURNPIKE_API_KEY", "sk-env")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.Backend.Model)
	assert.Equal(t, 1234, cfg.Limits.MaxTokenLimit)
	assert.Equal(t, "sk-env", cfg.Backend.APIKey)
}

func TestSaveFileRoundTrip(t *testing.T) {
	loader := NewLoader()
	cfg := DefaultConfig()
	cfg.Backend.Model = "saved-model"

	path := filepath.Join(t.TempDir(), "sub", "config.json")
	require.NoError(t, loader.SaveFile(cfg, path))

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-model", loaded.Backend.Model)
}

func TestDisableParallelSurvivesMerge(t *testing.T) {
	path := writeConfig(t, `{"tools": {"disable_parallel": true}}`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Tools.DisableParallel)

	// And a file that says nothing about tools leaves the default alone.
	path = writeConfig(t, `{"backend": {"model": "m"}}`)
	cfg, err = NewLoader().Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Tools.DisableParallel)
}
