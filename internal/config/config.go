// Package config holds provider configuration: dispatch mode, priority
// orders, enablement, and fallback/circuit-breaker parameters.
//
// Precedence, lowest to highest: hardcoded defaults, the optional
// .omnisearch.yaml file, OMNISEARCH_* environment variables, then any
// persisted runtime overrides restored from the state snapshot. All
// runtime mutation goes through Store setters so overrides persist.
package config

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Mode selects how tools are exposed: direct per-provider tools or the
// unified orchestrated surface.
type Mode string

const (
	ModeDirect  Mode = "direct"
	ModeUnified Mode = "unified"
)

// Defaults.
const (
	DefaultFallbackDelayMS   = 500
	DefaultBreakerThreshold  = 5
	DefaultBreakerTimeoutMS  = 300000
	DefaultMaxHistory        = 1000
	DefaultSaveThrottleMS    = 5000
	OnDemandMaxHistory       = 100
	OnDemandSaveThrottleMS   = 1000
	DefaultProviderTimeoutMS = 30000
	DefaultProviderRetries   = 2
)

// Default priority orders for the standard back-ends. Unregistered
// providers are filtered out at dispatch time.
var (
	DefaultSearchOrder = []string{"tavily", "brave", "kagi"}
	DefaultAIOrder     = []string{"perplexity", "kagi_fastgpt"}
)

// ProviderSettings are per-provider dispatch parameters.
type ProviderSettings struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	Priority     int           `yaml:"priority" json:"priority"`
	PreferredFor []string      `yaml:"preferred_for" json:"preferred_for,omitempty"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
}

// Config is the full provider configuration.
type Config struct {
	Mode                    Mode                         `yaml:"mode" json:"mode"`
	Providers               map[string]*ProviderSettings `yaml:"providers" json:"providers"`
	ProviderOrder           []string                     `yaml:"provider_order" json:"provider_order"`
	AIProviderOrder         []string                     `yaml:"ai_provider_order" json:"ai_provider_order"`
	FallbackEnabled         bool                         `yaml:"fallback_enabled" json:"fallback_enabled"`
	FallbackDelayMS         int                          `yaml:"fallback_delay_ms" json:"fallback_delay_ms"`
	CircuitBreakerThreshold int                          `yaml:"circuit_breaker_threshold" json:"circuit_breaker_threshold"`
	CircuitBreakerTimeoutMS int                          `yaml:"circuit_breaker_timeout_ms" json:"circuit_breaker_timeout_ms"`
	StateDir                string                       `yaml:"state_dir" json:"state_dir"`
	MaxHistory              int                          `yaml:"max_history" json:"max_history"`
	SaveThrottleMS          int                          `yaml:"save_throttle_ms" json:"save_throttle_ms"`
}

// Overrides are the runtime configuration mutations persisted through
// the state snapshot and reapplied at startup.
type Overrides struct {
	Mode              string   `json:"mode,omitempty"`
	ProviderOrder     []string `json:"provider_order,omitempty"`
	AIProviderOrder   []string `json:"ai_provider_order,omitempty"`
	DisabledProviders []string `json:"disabled_providers,omitempty"`
	FallbackEnabled   *bool    `json:"fallback_enabled,omitempty"`
}

// NewConfig returns the hardcoded defaults.
func NewConfig() *Config {
	return &Config{
		Mode:                    ModeUnified,
		Providers:               make(map[string]*ProviderSettings),
		ProviderOrder:           append([]string(nil), DefaultSearchOrder...),
		AIProviderOrder:         append([]string(nil), DefaultAIOrder...),
		FallbackEnabled:         true,
		FallbackDelayMS:         DefaultFallbackDelayMS,
		CircuitBreakerThreshold: DefaultBreakerThreshold,
		CircuitBreakerTimeoutMS: DefaultBreakerTimeoutMS,
		MaxHistory:              DefaultMaxHistory,
		SaveThrottleMS:          DefaultSaveThrottleMS,
	}
}

// Store wraps a Config with serialized mutation and override tracking.
type Store struct {
	mu        sync.RWMutex
	cfg       *Config
	overrides Overrides

	// onChange is invoked after every mutation to schedule a save.
	onChange func()
}

// NewStore creates a store around the given configuration.
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Store{cfg: cfg}
}

// SetOnChange installs the mutation hook used to schedule snapshot saves.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns a deep copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := *s.cfg
	out.Providers = make(map[string]*ProviderSettings, len(s.cfg.Providers))
	for name, ps := range s.cfg.Providers {
		copied := *ps
		out.Providers[name] = &copied
	}
	out.ProviderOrder = append([]string(nil), s.cfg.ProviderOrder...)
	out.AIProviderOrder = append([]string(nil), s.cfg.AIProviderOrder...)
	return out
}

// Overrides returns a copy of the persisted runtime overrides.
func (s *Store) Overrides() Overrides {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.overrides
	out.ProviderOrder = append([]string(nil), s.overrides.ProviderOrder...)
	out.AIProviderOrder = append([]string(nil), s.overrides.AIProviderOrder...)
	out.DisabledProviders = append([]string(nil), s.overrides.DisabledProviders...)
	if s.overrides.FallbackEnabled != nil {
		v := *s.overrides.FallbackEnabled
		out.FallbackEnabled = &v
	}
	return out
}

// Mode returns the current dispatch mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Mode
}

// SetMode switches the dispatch mode. Invalid values are ignored.
func (s *Store) SetMode(mode Mode) bool {
	if mode != ModeDirect && mode != ModeUnified {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Mode = mode
	s.overrides.Mode = string(mode)
	s.changed()
	return true
}

// FallbackEnabled reports whether the fallback loop is active.
func (s *Store) FallbackEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.FallbackEnabled
}

// SetFallbackEnabled toggles the fallback loop.
func (s *Store) SetFallbackEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.FallbackEnabled = enabled
	s.overrides.FallbackEnabled = &enabled
	s.changed()
}

// FallbackDelay returns the inter-provider fallback sleep.
func (s *Store) FallbackDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.cfg.FallbackDelayMS) * time.Millisecond
}

// BreakerThreshold returns the circuit breaker failure threshold.
func (s *Store) BreakerThreshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.CircuitBreakerThreshold
}

// BreakerTimeout returns the circuit breaker exclusion window.
func (s *Store) BreakerTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.cfg.CircuitBreakerTimeoutMS) * time.Millisecond
}

// Order returns the configured priority order for a category.
func (s *Store) Order(ai bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ai {
		return append([]string(nil), s.cfg.AIProviderOrder...)
	}
	return append([]string(nil), s.cfg.ProviderOrder...)
}

// SetOrder replaces the priority order for a category.
func (s *Store) SetOrder(ai bool, order []string) {
	order = normalizeNames(order)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ai {
		s.cfg.AIProviderOrder = order
		s.overrides.AIProviderOrder = append([]string(nil), order...)
	} else {
		s.cfg.ProviderOrder = order
		s.overrides.ProviderOrder = append([]string(nil), order...)
	}
	s.changed()
}

// IsEnabled reports whether a provider is enabled. Providers without
// explicit settings default to enabled.
func (s *Store) IsEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.cfg.Providers[name]
	if !ok {
		return true
	}
	return ps.Enabled
}

// SetDisabled replaces the disabled-provider set.
func (s *Store) SetDisabled(names []string) {
	names = normalizeNames(names)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-enable everything, then disable the requested set.
	for _, ps := range s.cfg.Providers {
		ps.Enabled = true
	}
	for _, name := range names {
		s.ensureLocked(name).Enabled = false
	}
	s.overrides.DisabledProviders = append([]string(nil), names...)
	s.changed()
}

// Disabled returns the providers currently disabled.
func (s *Store) Disabled() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for name, ps := range s.cfg.Providers {
		if !ps.Enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ProviderSettings returns the settings for a provider, creating the
// default record if absent.
func (s *Store) ProviderSettings(name string) ProviderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.ensureLocked(name)
}

// ensureLocked returns the settings record for name, creating defaults
// if needed. Caller must hold the write lock.
func (s *Store) ensureLocked(name string) *ProviderSettings {
	ps, ok := s.cfg.Providers[name]
	if !ok {
		ps = &ProviderSettings{
			Enabled:    true,
			MaxRetries: DefaultProviderRetries,
			Timeout:    DefaultProviderTimeoutMS * time.Millisecond,
		}
		s.cfg.Providers[name] = ps
	}
	return ps
}

// PreferredProviderForQuery returns the first available provider whose
// preferred_for keyword list matches the query by substring, falling
// back to the first available provider.
func (s *Store) PreferredProviderForQuery(query string, available []string) string {
	if len(available) == 0 {
		return ""
	}

	lower := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range available {
		ps, ok := s.cfg.Providers[name]
		if !ok {
			continue
		}
		for _, kw := range ps.PreferredFor {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return name
			}
		}
	}
	return available[0]
}

// ApplyOverrides reapplies persisted runtime overrides, typically after
// loading the state snapshot.
func (s *Store) ApplyOverrides(o Overrides) {
	if o.Mode != "" {
		s.SetMode(Mode(o.Mode))
	}
	if len(o.ProviderOrder) > 0 {
		s.SetOrder(false, o.ProviderOrder)
	}
	if len(o.AIProviderOrder) > 0 {
		s.SetOrder(true, o.AIProviderOrder)
	}
	if o.DisabledProviders != nil {
		s.SetDisabled(o.DisabledProviders)
	}
	if o.FallbackEnabled != nil {
		s.SetFallbackEnabled(*o.FallbackEnabled)
	}
}

// changed invokes the mutation hook. Caller must hold the lock.
func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// normalizeNames lowercases, trims, dedupes, and sorts out empties while
// preserving order.
func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
