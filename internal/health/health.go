// Package health tracks per-provider availability: consecutive-failure
// circuit breakers, rate-limit cooldowns, and credential failures.
//
// Expiry is lazy: no background timers run. Every IsAvailable call checks
// whether a cooldown or breaker window has lapsed and transitions the
// record back to available on the spot.
package health

import (
	"errors"
	"sync"
	"time"

	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
)

// Cooldown and recovery windows.
const (
	// DefaultRateLimitCooldown applies when a rate-limited provider gives
	// no reset timestamp.
	DefaultRateLimitCooldown = time.Hour

	// CreditCooldown applies to credit/quota exhaustion.
	CreditCooldown = 24 * time.Hour

	// FailureResetTime is how recent a success must be for the failure
	// count to decay on availability checks.
	FailureResetTime = 30 * time.Minute
)

// Default circuit breaker parameters.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerTimeout   = 5 * time.Minute
)

// ErrorInfo is the last-error record kept per provider.
type ErrorInfo struct {
	Kind    oserrors.Kind     `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ProviderHealth is the mutable health record of one provider.
type ProviderHealth struct {
	Available               bool       `json:"available"`
	FailureCount            int        `json:"failure_count"`
	LastSuccess             *time.Time `json:"last_success,omitempty"`
	LastError               *ErrorInfo `json:"last_error,omitempty"`
	RateLimitedUntil        *time.Time `json:"rate_limited_until,omitempty"`
	CircuitBreakerOpen      bool       `json:"circuit_breaker_open"`
	CircuitBreakerOpenUntil *time.Time `json:"circuit_breaker_open_until,omitempty"`
}

// Manager owns the health records for all registered providers.
// All mutations are serialized by a single lock; concurrent callers may
// observe different intermediate failure counts but the final state
// reflects every applied event.
type Manager struct {
	mu      sync.Mutex
	clock   Clock
	records map[string]*ProviderHealth

	breakerThreshold int
	breakerTimeout   time.Duration

	// onChange is invoked after every mutation, outside field updates
	// but inside the lock, to schedule a snapshot save.
	onChange func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithBreakerThreshold sets the consecutive-failure count that opens the
// circuit breaker.
func WithBreakerThreshold(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.breakerThreshold = n
		}
	}
}

// WithBreakerTimeout sets how long an open breaker excludes a provider.
func WithBreakerTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.breakerTimeout = d
		}
	}
}

// NewManager creates a health manager.
// Default: threshold 5, breaker timeout 5 minutes, system clock.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		clock:            SystemClock{},
		records:          make(map[string]*ProviderHealth),
		breakerThreshold: DefaultBreakerThreshold,
		breakerTimeout:   DefaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetOnChange installs the mutation hook used to schedule snapshot saves.
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Register ensures a health record exists for the provider.
// Records are created lazily and never deleted.
func (m *Manager) Register(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(name)
}

// ensure returns the record for name, creating it if needed.
// Caller must hold the lock.
func (m *Manager) ensure(name string) *ProviderHealth {
	rec, ok := m.records[name]
	if !ok {
		rec = &ProviderHealth{Available: true}
		m.records[name] = rec
	}
	return rec
}

// RecordSuccess clears all failure state for the provider.
func (m *Manager) RecordSuccess(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.ensure(name)
	now := m.clock.Now()

	rec.Available = true
	rec.FailureCount = 0
	rec.LastError = nil
	rec.RateLimitedUntil = nil
	rec.CircuitBreakerOpen = false
	rec.CircuitBreakerOpenUntil = nil
	rec.LastSuccess = &now

	m.changed()
}

// RecordFailure applies a failure outcome to the provider's record.
// The error kind drives the transition: rate limits and credit
// exhaustion set cooldowns, auth errors disable until manual reset,
// provider errors and timeouts count toward the circuit breaker, and
// the API_ERROR catch-all is refined by message heuristics first.
func (m *Manager) RecordFailure(name string, err error) {
	kind := oserrors.KindOf(err)
	message := ""
	if err != nil {
		message = err.Error()
	}
	var se *oserrors.SearchError
	if errors.As(err, &se) {
		message = se.Message
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.ensure(name)
	now := m.clock.Now()

	refined := oserrors.RefineKind(kind, message)
	rec.LastError = &ErrorInfo{Kind: refined, Message: message}
	if se != nil && se.Details != nil {
		rec.LastError.Details = se.Details
	}

	switch refined {
	case oserrors.KindRateLimit:
		until := now.Add(DefaultRateLimitCooldown)
		if se != nil && se.RetryAfter != nil {
			until = *se.RetryAfter
		}
		rec.RateLimitedUntil = &until
		rec.Available = false

	case oserrors.KindCreditExhausted, oserrors.KindQuotaExceeded:
		until := now.Add(CreditCooldown)
		rec.RateLimitedUntil = &until
		rec.Available = false

	case oserrors.KindAuthentication:
		// No timed recovery; only a manual reset brings this back.
		rec.Available = false

	case oserrors.KindProviderError, oserrors.KindTimeout:
		rec.FailureCount++
		if rec.FailureCount >= m.breakerThreshold {
			until := now.Add(m.breakerTimeout)
			rec.CircuitBreakerOpen = true
			rec.CircuitBreakerOpenUntil = &until
			rec.Available = false
		}

	default:
		// API_ERROR that matched no heuristic, or INVALID_INPUT:
		// count it but do not trip the breaker.
		rec.FailureCount++
	}

	m.changed()
}

// IsAvailable reports whether the provider can be dispatched to right
// now, applying lazy expiry of lapsed cooldown and breaker windows.
func (m *Manager) IsAvailable(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[name]
	if !ok {
		// Unregistered providers are considered available; the record is
		// created on first outcome.
		return true
	}

	now := m.clock.Now()
	mutated := m.expire(rec, now)
	if mutated {
		m.changed()
	}

	return rec.Available && !rec.CircuitBreakerOpen &&
		(rec.RateLimitedUntil == nil || !now.Before(*rec.RateLimitedUntil))
}

// expire applies lazy timer semantics to a record. Returns true if any
// field changed. Caller must hold the lock.
func (m *Manager) expire(rec *ProviderHealth, now time.Time) bool {
	mutated := false

	if rec.RateLimitedUntil != nil && !now.Before(*rec.RateLimitedUntil) {
		rec.RateLimitedUntil = nil
		rec.Available = true
		mutated = true
	}

	if rec.CircuitBreakerOpenUntil != nil && !now.Before(*rec.CircuitBreakerOpenUntil) {
		rec.CircuitBreakerOpen = false
		rec.CircuitBreakerOpenUntil = nil
		rec.FailureCount = 0
		rec.Available = true
		mutated = true
	}

	// Recent success decays the failure count.
	if rec.LastSuccess != nil && now.Sub(*rec.LastSuccess) <= FailureResetTime && rec.FailureCount > 0 {
		rec.FailureCount /= 2
		mutated = true
	}

	return mutated
}

// Reset clears all failure state and returns the provider to available.
func (m *Manager) Reset(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.ensure(name)
	rec.Available = true
	rec.FailureCount = 0
	rec.LastError = nil
	rec.RateLimitedUntil = nil
	rec.CircuitBreakerOpen = false
	rec.CircuitBreakerOpenUntil = nil

	m.changed()
}

// Snapshot returns a copy of the provider's health record.
func (m *Manager) Snapshot(name string) (ProviderHealth, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[name]
	if !ok {
		return ProviderHealth{}, false
	}
	return *rec, true
}

// All returns a copy of every health record.
func (m *Manager) All() map[string]ProviderHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ProviderHealth, len(m.records))
	for name, rec := range m.records {
		out[name] = *rec
	}
	return out
}

// Restore installs records loaded from a persisted snapshot.
func (m *Manager) Restore(records map[string]ProviderHealth) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, rec := range records {
		copied := rec
		m.records[name] = &copied
	}
}

// Filter returns the subset of names that are currently available,
// preserving input order.
func (m *Manager) Filter(names []string) []string {
	var out []string
	for _, name := range names {
		if m.IsAvailable(name) {
			out = append(out, name)
		}
	}
	return out
}

// changed invokes the mutation hook. Caller must hold the lock.
func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
