package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "openai", cfg.Classifier.Name)
	assert.Equal(t, 0.1, cfg.Routing.Temperature)
	assert.Equal(t, 300, cfg.Routing.MaxTokens)
	assert.Equal(t, 2000, cfg.Routing.PromptBudget)
	assert.Equal(t, 60*time.Second, cfg.Pool.StaleAfter)
	assert.False(t, cfg.Audit.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Routing, cfg.Routing)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
  format: json
classifier:
  name: openai
  model: gpt-4o
  rate_per_minute: 30
routing:
  temperature: 0.2
  max_tokens: 500
pool:
  sweep_schedule: "@every 10s"
  stale_after: 90s
audit:
  enabled: true
  db_path: /tmp/audit.db
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "gpt-4o", cfg.Classifier.Model)
	assert.Equal(t, 30, cfg.Classifier.RatePerMinute)
	assert.Equal(t, 0.2, cfg.Routing.Temperature)
	assert.Equal(t, 500, cfg.Routing.MaxTokens)
	assert.Equal(t, "@every 10s", cfg.Pool.SweepSchedule)
	assert.Equal(t, 90*time.Second, cfg.Pool.StaleAfter)
	assert.True(t, cfg.Audit.Enabled)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger: [broken"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DISPATCHAI_LOG_LEVEL", "error")
	t.Setenv("DISPATCHAI_API_KEY", "sk-test")
	t.Setenv("DISPATCHAI_MODEL", "gpt-4.1")
	t.Setenv("DISPATCHAI_AUDIT_DB", "/tmp/override.db")
	t.Setenv("DISPATCHAI_RATE_PER_MINUTE", "12")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logger.Level)
	assert.Equal(t, "sk-test", cfg.Classifier.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.Classifier.Model)
	assert.Equal(t, "/tmp/override.db", cfg.Audit.DBPath)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 12, cfg.Classifier.RatePerMinute)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"bad logger format": func(c *Config) { c.Logger.Format = "xml" },
		"temperature range": func(c *Config) { c.Routing.Temperature = 3 },
		"top_p range":       func(c *Config) { c.Routing.TopP = 1.5 },
		"negative tokens":   func(c *Config) { c.Routing.MaxTokens = -1 },
		"negative stale":    func(c *Config) { c.Pool.StaleAfter = -time.Second },
		"negative rate":     func(c *Config) { c.Classifier.RatePerMinute = -1 },
		"audit without db":  func(c *Config) { c.Audit.Enabled = true; c.Audit.DBPath = "" },
	} {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
