package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Pipeline.BatchSize)
	assert.Equal(t, 200, cfg.Pipeline.MaxQueries)
	assert.Equal(t, 60, cfg.Pipeline.EngineTimeoutSecs)
	assert.Equal(t, 12, cfg.SearchConsole.Months)
	assert.Equal(t, "https://www.googleapis.com/webmasters/v3", cfg.SearchConsole.BaseURL)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Engines.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Engines.OpenAI.Model)
	assert.Equal(t, "sonar-pro", cfg.Engines.Perplexity.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Engines.Anthropic.Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.Engines.Gemini.Model)
	assert.Equal(t, "deepseek-chat", cfg.Engines.DeepSeek.Model)
	assert.InDelta(t, 2.50, cfg.Pricing.Engines["openai"].Input, 0.001)
	assert.InDelta(t, 15.00, cfg.Pricing.Engines["anthropic"].Output, 0.001)

	// No credentials by default.
	assert.Empty(t, cfg.Engines.OpenAI.Key)
	assert.Empty(t, cfg.SearchConsole.Token)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  database_url: visibility.db
log:
  level: debug
  format: console
server:
  port: 9999
pipeline:
  batch_size: 5
  max_queries: 50
engines:
  openai:
    key: sk-test
    model: gpt-4o-mini
search_console:
  token: sc-token
  months: 6
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "visibility.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Pipeline.BatchSize)
	assert.Equal(t, 50, cfg.Pipeline.MaxQueries)
	assert.Equal(t, "sk-test", cfg.Engines.OpenAI.Key)
	assert.Equal(t, "gpt-4o-mini", cfg.Engines.OpenAI.Model)
	assert.Equal(t, "sc-token", cfg.SearchConsole.Token)
	assert.Equal(t, 6, cfg.SearchConsole.Months)

	// Unset values still fall back to defaults.
	assert.Equal(t, 60, cfg.Pipeline.EngineTimeoutSecs)
	assert.Equal(t, "sonar-pro", cfg.Engines.Perplexity.Model)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VISIBILITY_STORE_DRIVER", "sqlite")
	t.Setenv("VISIBILITY_ENGINES_OPENAI_KEY", "sk-env")
	t.Setenv("VISIBILITY_PIPELINE_BATCH_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sk-env", cfg.Engines.OpenAI.Key)
	assert.Equal(t, 25, cfg.Pipeline.BatchSize)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"bad level", LogConfig{Level: "shouty", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, zap.L())
		})
	}
}
