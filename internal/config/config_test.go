package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ModeUnified, cfg.Mode)
	assert.Equal(t, DefaultSearchOrder, cfg.ProviderOrder)
	assert.Equal(t, DefaultAIOrder, cfg.AIProviderOrder)
	assert.True(t, cfg.FallbackEnabled)
	assert.Equal(t, DefaultBreakerThreshold, cfg.CircuitBreakerThreshold)
	assert.Equal(t, DefaultMaxHistory, cfg.MaxHistory)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvMode, "direct")
	t.Setenv(EnvProviderOrder, "kagi, brave ,tavily")
	t.Setenv(EnvDisabled, "brave")
	t.Setenv(EnvFallbackEnabled, "false")
	t.Setenv(EnvFallbackDelayMS, "250")
	t.Setenv(EnvBreakerThreshold, "3")

	cfg, err := Load("", slog.Default())
	require.NoError(t, err)

	assert.Equal(t, ModeDirect, cfg.Mode)
	assert.Equal(t, []string{"kagi", "brave", "tavily"}, cfg.ProviderOrder)
	assert.False(t, cfg.FallbackEnabled)
	assert.Equal(t, 250, cfg.FallbackDelayMS)
	assert.Equal(t, 3, cfg.CircuitBreakerThreshold)
	require.Contains(t, cfg.Providers, "brave")
	assert.False(t, cfg.Providers["brave"].Enabled)
}

func TestLoad_InvalidNumericEnvIgnored(t *testing.T) {
	t.Setenv(EnvFallbackDelayMS, "not-a-number")
	t.Setenv(EnvBreakerThreshold, "999") // out of 1..20
	t.Setenv(EnvBreakerTimeoutMS, "1")   // below 10000

	cfg, err := Load("", slog.Default())
	require.NoError(t, err)

	assert.Equal(t, DefaultFallbackDelayMS, cfg.FallbackDelayMS)
	assert.Equal(t, DefaultBreakerThreshold, cfg.CircuitBreakerThreshold)
	assert.Equal(t, DefaultBreakerTimeoutMS, cfg.CircuitBreakerTimeoutMS)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
mode: direct
provider_order: [kagi, tavily]
fallback_delay_ms: 100
providers:
  tavily:
    enabled: true
    priority: 1
    preferred_for: [news, research]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yaml), 0o644))

	cfg, err := Load(dir, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, ModeDirect, cfg.Mode)
	assert.Equal(t, []string{"kagi", "tavily"}, cfg.ProviderOrder)
	assert.Equal(t, 100, cfg.FallbackDelayMS)
	require.Contains(t, cfg.Providers, "tavily")
	assert.Equal(t, []string{"news", "research"}, cfg.Providers["tavily"].PreferredFor)
	// Defaults filled in for fields the file omitted
	assert.Equal(t, DefaultProviderRetries, cfg.Providers["tavily"].MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Providers["tavily"].Timeout)
}

func TestStore_SettersTrackOverrides(t *testing.T) {
	s := NewStore(NewConfig())

	var saves int
	s.SetOnChange(func() { saves++ })

	require.True(t, s.SetMode(ModeDirect))
	s.SetOrder(false, []string{"brave", "kagi"})
	s.SetDisabled([]string{"tavily"})
	s.SetFallbackEnabled(false)

	o := s.Overrides()
	assert.Equal(t, "direct", o.Mode)
	assert.Equal(t, []string{"brave", "kagi"}, o.ProviderOrder)
	assert.Equal(t, []string{"tavily"}, o.DisabledProviders)
	require.NotNil(t, o.FallbackEnabled)
	assert.False(t, *o.FallbackEnabled)
	assert.Equal(t, 4, saves)
}

func TestStore_SetModeRejectsInvalid(t *testing.T) {
	s := NewStore(NewConfig())
	assert.False(t, s.SetMode("turbo"))
	assert.Equal(t, ModeUnified, s.Mode())
}

func TestStore_SetDisabledReplacesSet(t *testing.T) {
	s := NewStore(NewConfig())

	s.SetDisabled([]string{"tavily", "brave"})
	assert.Equal(t, []string{"brave", "tavily"}, s.Disabled())
	assert.False(t, s.IsEnabled("tavily"))

	s.SetDisabled([]string{"kagi"})
	assert.Equal(t, []string{"kagi"}, s.Disabled())
	assert.True(t, s.IsEnabled("tavily"))
}

func TestStore_ApplyOverridesRoundTrip(t *testing.T) {
	s := NewStore(NewConfig())
	s.SetMode(ModeDirect)
	s.SetOrder(true, []string{"kagi_fastgpt", "perplexity"})
	s.SetFallbackEnabled(false)

	restored := NewStore(NewConfig())
	restored.ApplyOverrides(s.Overrides())

	assert.Equal(t, ModeDirect, restored.Mode())
	assert.Equal(t, []string{"kagi_fastgpt", "perplexity"}, restored.Order(true))
	assert.False(t, restored.FallbackEnabled())
}

func TestStore_PreferredProviderForQuery(t *testing.T) {
	cfg := NewConfig()
	cfg.Providers["tavily"] = &ProviderSettings{
		Enabled:      true,
		PreferredFor: []string{"news", "research"},
	}
	cfg.Providers["kagi"] = &ProviderSettings{
		Enabled:      true,
		PreferredFor: []string{"code"},
	}
	s := NewStore(cfg)

	available := []string{"brave", "tavily", "kagi"}
	assert.Equal(t, "tavily", s.PreferredProviderForQuery("latest research on fusion", available))
	assert.Equal(t, "kagi", s.PreferredProviderForQuery("golang code sample", available))
	assert.Equal(t, "brave", s.PreferredProviderForQuery("nothing special", available))
	assert.Equal(t, "", s.PreferredProviderForQuery("anything", nil))
}

func TestApplyOnDemandDefaults(t *testing.T) {
	cfg := NewConfig()
	cfg.ApplyOnDemandDefaults()
	assert.Equal(t, OnDemandMaxHistory, cfg.MaxHistory)
	assert.Equal(t, OnDemandSaveThrottleMS, cfg.SaveThrottleMS)

	// Explicit values survive
	explicit := NewConfig()
	explicit.MaxHistory = 42
	explicit.ApplyOnDemandDefaults()
	assert.Equal(t, 42, explicit.MaxHistory)
}
