package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional project-level configuration file.
const ConfigFileName = ".omnisearch.yaml"

// Load builds the effective configuration:
//  1. Hardcoded defaults
//  2. .omnisearch.yaml in dir (if present)
//  3. OMNISEARCH_* environment variables
//
// Runtime overrides from the state snapshot are applied later by the
// caller, once the snapshot has been read.
func Load(dir string, logger *slog.Logger) (*Config, error) {
	cfg := NewConfig()

	if dir != "" {
		if err := cfg.loadFromFile(filepath.Join(dir, ConfigFileName)); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides(logger)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile merges YAML values over defaults. A missing file is fine.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Mode != "" {
		c.Mode = other.Mode
	}
	if len(other.ProviderOrder) > 0 {
		c.ProviderOrder = normalizeNames(other.ProviderOrder)
	}
	if len(other.AIProviderOrder) > 0 {
		c.AIProviderOrder = normalizeNames(other.AIProviderOrder)
	}
	if other.FallbackDelayMS != 0 {
		c.FallbackDelayMS = other.FallbackDelayMS
	}
	if other.CircuitBreakerThreshold != 0 {
		c.CircuitBreakerThreshold = other.CircuitBreakerThreshold
	}
	if other.CircuitBreakerTimeoutMS != 0 {
		c.CircuitBreakerTimeoutMS = other.CircuitBreakerTimeoutMS
	}
	if other.StateDir != "" {
		c.StateDir = other.StateDir
	}
	if other.MaxHistory != 0 {
		c.MaxHistory = other.MaxHistory
	}
	if other.SaveThrottleMS != 0 {
		c.SaveThrottleMS = other.SaveThrottleMS
	}
	for name, ps := range other.Providers {
		copied := *ps
		if copied.MaxRetries == 0 {
			copied.MaxRetries = DefaultProviderRetries
		}
		if copied.Timeout == 0 {
			copied.Timeout = DefaultProviderTimeoutMS * time.Millisecond
		}
		c.Providers[name] = &copied
	}
}

// Validate checks the bounded numeric fields.
func (c *Config) Validate() error {
	if c.Mode != ModeDirect && c.Mode != ModeUnified {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDirect, ModeUnified, c.Mode)
	}
	if c.FallbackDelayMS < 0 || c.FallbackDelayMS > 10000 {
		return fmt.Errorf("fallback_delay_ms must be in 0..10000, got %d", c.FallbackDelayMS)
	}
	if c.CircuitBreakerThreshold < 1 || c.CircuitBreakerThreshold > 20 {
		return fmt.Errorf("circuit_breaker_threshold must be in 1..20, got %d", c.CircuitBreakerThreshold)
	}
	if c.CircuitBreakerTimeoutMS < 10000 || c.CircuitBreakerTimeoutMS > 3600000 {
		return fmt.Errorf("circuit_breaker_timeout_ms must be in 10000..3600000, got %d", c.CircuitBreakerTimeoutMS)
	}
	if c.MaxHistory < 1 {
		return fmt.Errorf("max_history must be positive, got %d", c.MaxHistory)
	}
	if c.SaveThrottleMS < 0 {
		return fmt.Errorf("save_throttle_ms must be non-negative, got %d", c.SaveThrottleMS)
	}
	return nil
}

// ApplyOnDemandDefaults lowers the history cap and save throttle for
// short-lived on-demand deployments, unless explicit values were set.
func (c *Config) ApplyOnDemandDefaults() {
	if c.MaxHistory == DefaultMaxHistory {
		c.MaxHistory = OnDemandMaxHistory
	}
	if c.SaveThrottleMS == DefaultSaveThrottleMS {
		c.SaveThrottleMS = OnDemandSaveThrottleMS
	}
}
