package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvMode             = "OMNISEARCH_MODE"
	EnvProviderOrder    = "OMNISEARCH_PROVIDER_ORDER"
	EnvAIProviderOrder  = "OMNISEARCH_AI_PROVIDER_ORDER"
	EnvDisabled         = "OMNISEARCH_DISABLED_PROVIDERS"
	EnvFallbackEnabled  = "OMNISEARCH_FALLBACK_ENABLED"
	EnvFallbackDelayMS  = "OMNISEARCH_FALLBACK_DELAY_MS"
	EnvBreakerThreshold = "OMNISEARCH_CIRCUIT_BREAKER_THRESHOLD"
	EnvBreakerTimeoutMS = "OMNISEARCH_CIRCUIT_BREAKER_TIMEOUT_MS"
	EnvStateDir         = "OMNISEARCH_STATE_DIR"
	EnvMaxHistory       = "OMNISEARCH_MAX_HISTORY"
	EnvSaveThrottleMS   = "OMNISEARCH_SAVE_THROTTLE_MS"
)

// applyEnvOverrides applies OMNISEARCH_* environment variables on top of
// the file-derived configuration. Invalid numeric values are logged and
// ignored so a typo never changes dispatch behavior silently.
func (c *Config) applyEnvOverrides(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	if v := os.Getenv(EnvMode); v != "" {
		switch Mode(strings.ToLower(v)) {
		case ModeDirect:
			c.Mode = ModeDirect
		case ModeUnified:
			c.Mode = ModeUnified
		default:
			logger.Warn("ignoring invalid mode", slog.String("env", EnvMode), slog.String("value", v))
		}
	}

	if v := os.Getenv(EnvProviderOrder); v != "" {
		c.ProviderOrder = splitCSV(v)
	}
	if v := os.Getenv(EnvAIProviderOrder); v != "" {
		c.AIProviderOrder = splitCSV(v)
	}
	if v := os.Getenv(EnvDisabled); v != "" {
		for _, name := range splitCSV(v) {
			ps, ok := c.Providers[name]
			if !ok {
				ps = &ProviderSettings{
					Enabled:    true,
					MaxRetries: DefaultProviderRetries,
					Timeout:    DefaultProviderTimeoutMS * time.Millisecond,
				}
				c.Providers[name] = ps
			}
			ps.Enabled = false
		}
	}

	if v := os.Getenv(EnvFallbackEnabled); v != "" {
		c.FallbackEnabled = parseBool(v, c.FallbackEnabled)
	}

	c.applyIntEnv(logger, EnvFallbackDelayMS, 0, 10000, &c.FallbackDelayMS)
	c.applyIntEnv(logger, EnvBreakerThreshold, 1, 20, &c.CircuitBreakerThreshold)
	c.applyIntEnv(logger, EnvBreakerTimeoutMS, 10000, 3600000, &c.CircuitBreakerTimeoutMS)
	c.applyIntEnv(logger, EnvMaxHistory, 1, 100000, &c.MaxHistory)
	c.applyIntEnv(logger, EnvSaveThrottleMS, 0, 600000, &c.SaveThrottleMS)

	if v := os.Getenv(EnvStateDir); v != "" {
		c.StateDir = v
	}
}

// applyIntEnv parses a bounded integer env var into dst, logging and
// keeping the default on any invalid value.
func (c *Config) applyIntEnv(logger *slog.Logger, key string, min, max int, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < min || n > max {
		logger.Warn("ignoring invalid numeric value",
			slog.String("env", key),
			slog.String("value", v))
		return
	}
	*dst = n
}

// splitCSV splits a comma-separated list, trimming and lowercasing names.
func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	return normalizeNames(parts)
}

// parseBool interprets common boolean spellings, keeping def otherwise.
func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}
