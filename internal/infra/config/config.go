// Package config loads and validates the dispatch-ai YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Routing    RoutingConfig    `yaml:"routing"`
	Pool       PoolConfig       `yaml:"pool"`
	Audit      AuditConfig      `yaml:"audit"`
}

// LoggerConfig controls log level, format, and destination.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig controls OpenTelemetry setup.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

// ClassifierConfig describes the LLM classification provider.
type ClassifierConfig struct {
	Name        string        `yaml:"name"` // provider identifier, e.g. "openai"
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	// RatePerMinute caps classifier calls; 0 disables the limiter.
	RatePerMinute int `yaml:"rate_per_minute"`
	// Breaker configures the circuit breaker around the provider.
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the classifier circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RoutingConfig holds classifier call parameters for the router.
type RoutingConfig struct {
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	TopP         float64 `yaml:"top_p"`
	PromptBudget int     `yaml:"prompt_budget"`
}

// PoolConfig controls the agent pool health sweep.
type PoolConfig struct {
	SweepSchedule string        `yaml:"sweep_schedule"` // cron expression; empty disables
	StaleAfter    time.Duration `yaml:"stale_after"`
}

// AuditConfig controls the routing audit store.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Tracer: TracerConfig{Enabled: false, Exporter: "noop"},
		Classifier: ClassifierConfig{
			Name:  "openai",
			Model: "gpt-4o-mini",
		},
		Routing: RoutingConfig{
			Temperature:  0.1,
			MaxTokens:    300,
			TopP:         0.9,
			PromptBudget: 2000,
		},
		Pool: PoolConfig{
			SweepSchedule: "@every 30s",
			StaleAfter:    60 * time.Second,
		},
		Audit: AuditConfig{Enabled: false, DBPath: "dispatch-audit.db"},
	}
}

// Load reads the YAML config at path, applies DISPATCHAI_* environment
// overrides, and validates the result. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets DISPATCHAI_* variables override file values for
// the settings commonly set per-deployment.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DISPATCHAI_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("DISPATCHAI_API_KEY"); v != "" {
		cfg.Classifier.APIKey = v
	}
	if v := os.Getenv("DISPATCHAI_BASE_URL"); v != "" {
		cfg.Classifier.BaseURL = v
	}
	if v := os.Getenv("DISPATCHAI_MODEL"); v != "" {
		cfg.Classifier.Model = v
	}
	if v := os.Getenv("DISPATCHAI_AUDIT_DB"); v != "" {
		cfg.Audit.DBPath = v
		cfg.Audit.Enabled = true
	}
	if v := os.Getenv("DISPATCHAI_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Classifier.RatePerMinute = n
		}
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: invalid logger format %q", c.Logger.Format)
	}
	if c.Routing.Temperature < 0 || c.Routing.Temperature > 2 {
		return fmt.Errorf("config: temperature %v out of range [0,2]", c.Routing.Temperature)
	}
	if c.Routing.TopP < 0 || c.Routing.TopP > 1 {
		return fmt.Errorf("config: top_p %v out of range [0,1]", c.Routing.TopP)
	}
	if c.Routing.MaxTokens < 0 {
		return fmt.Errorf("config: max_tokens must be non-negative")
	}
	if c.Pool.StaleAfter < 0 {
		return fmt.Errorf("config: stale_after must be non-negative")
	}
	if c.Classifier.RatePerMinute < 0 {
		return fmt.Errorf("config: rate_per_minute must be non-negative")
	}
	if c.Audit.Enabled && c.Audit.DBPath == "" {
		return fmt.Errorf("config: audit enabled but db_path empty")
	}
	return nil
}
