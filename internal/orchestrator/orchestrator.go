// Package orchestrator combines the analyzer recommendation, health
// state, and adaptive ranking into a dispatch order, then executes it
// with per-attempt timeouts, bounded retries, and provider fallback.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/config"
	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/health"
	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/internal/tracker"
)

// Dispatch parameters.
const (
	// DefaultAttemptTimeout bounds a single provider call.
	DefaultAttemptTimeout = 30 * time.Second

	// backoffBase and backoffCap shape the retry backoff:
	// min(backoffBase << attempt, backoffCap).
	backoffBase = time.Second
	backoffCap  = 5 * time.Second

	// confidenceGate is the recommendation confidence above which the
	// analyzer's pick leads the dispatch order.
	confidenceGate = 70
)

// QueryAnalysis is the per-request analysis attached to successful
// results.
type QueryAnalysis struct {
	Type                provider.QueryType `json:"type"`
	RecommendedProvider string             `json:"recommended_provider"`
	Confidence          int                `json:"confidence"`
	Reasoning           string             `json:"reasoning,omitempty"`
}

// UnifiedResult is the envelope returned from every orchestrated search.
// The orchestrator never returns an error across its public boundary;
// failures are reported in-band.
type UnifiedResult struct {
	Results          []provider.SearchResult `json:"results"`
	ProviderUsed     string                  `json:"provider_used"`
	FallbackAttempts []string                `json:"fallback_attempts"`
	TotalTimeMS      int64                   `json:"total_time_ms"`
	Success          bool                    `json:"success"`
	Error            string                  `json:"error,omitempty"`
	QueryAnalysis    *QueryAnalysis          `json:"query_analysis,omitempty"`
}

// Deps are the injected collaborators. A single orchestrator instance is
// shared process-wide; tests build an isolated one per case.
type Deps struct {
	Registry *provider.Registry
	Analyzer *analyzer.Analyzer
	Health   *health.Manager
	Tracker  *tracker.Tracker
	Config   *config.Store
	Logger   *slog.Logger
}

// Orchestrator is the per-call decision engine.
type Orchestrator struct {
	registry *provider.Registry
	analyzer *analyzer.Analyzer
	health   *health.Manager
	tracker  *tracker.Tracker
	config   *config.Store
	logger   *slog.Logger

	// sleep is injected so retry/fallback delays are testable.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper replaces the delay function (tests use an instant one).
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = fn }
}

// WithNowFunc replaces the time source for elapsed-time measurement.
func WithNowFunc(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator from its collaborators.
func New(d Deps, opts ...Option) *Orchestrator {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		registry: d.Registry,
		analyzer: d.Analyzer,
		health:   d.Health,
		tracker:  d.Tracker,
		config:   d.Config,
		logger:   logger,
		sleep:    sleepCtx,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Accessors for the tool layer.

// Registry returns the adapter registry.
func (o *Orchestrator) Registry() *provider.Registry { return o.registry }

// Analyzer returns the query analyzer.
func (o *Orchestrator) Analyzer() *analyzer.Analyzer { return o.analyzer }

// Health returns the provider health manager.
func (o *Orchestrator) Health() *health.Manager { return o.health }

// Tracker returns the performance tracker.
func (o *Orchestrator) Tracker() *tracker.Tracker { return o.tracker }

// Config returns the configuration store.
func (o *Orchestrator) Config() *config.Store { return o.config }

// Search runs the unified search path over the classic search category,
// consulting the analyzer recommendation.
func (o *Orchestrator) Search(ctx context.Context, params provider.SearchParams) UnifiedResult {
	return o.run(ctx, provider.CategorySearch, params, true)
}

// AISearch runs the same algorithm over the ai_response category. The
// analyzer recommendation is skipped; dispatch order is adaptive ranking
// over the configured priority order.
func (o *Orchestrator) AISearch(ctx context.Context, params provider.SearchParams) UnifiedResult {
	return o.run(ctx, provider.CategoryAIResponse, params, false)
}

// run executes selection, dispatch, retry, and fallback for one request.
func (o *Orchestrator) run(ctx context.Context, category provider.Category, params provider.SearchParams, useRecommendation bool) UnifiedResult {
	start := o.now()
	params.Limit = provider.ClampLimit(params.Limit)

	chars := o.analyzer.Analyze(params.Query)
	available := o.Available(category)

	if len(available) == 0 {
		return UnifiedResult{
			FallbackAttempts: []string{},
			TotalTimeMS:      o.sinceMS(start),
			Error:            fmt.Sprintf("No %s providers available", category),
		}
	}

	var rec analyzer.Recommendation
	if useRecommendation {
		rec = analyzer.Recommend(chars, available)
	}
	order := o.dispatchOrder(chars, rec, available)

	fallback := o.config.FallbackEnabled()
	attempts := make([]string, 0, len(order))

	for i, name := range order {
		if i > 0 {
			if !fallback {
				break
			}
			if err := o.sleep(ctx, o.config.FallbackDelay()); err != nil {
				return o.cancelled(start, attempts)
			}
		}

		results, elapsed, err := o.attemptWithRetries(ctx, name, params)
		if err == nil {
			o.health.RecordSuccess(name)
			o.record(params.Query, chars, name, true, elapsed, len(results), "")

			res := UnifiedResult{
				Results:          results,
				ProviderUsed:     name,
				FallbackAttempts: attempts,
				TotalTimeMS:      o.sinceMS(start),
				Success:          true,
			}
			if useRecommendation {
				res.QueryAnalysis = &QueryAnalysis{
					Type:                chars.QueryType,
					RecommendedProvider: rec.Provider,
					Confidence:          rec.Confidence,
					Reasoning:           rec.Reasoning,
				}
			}
			return res
		}

		if ctx.Err() == context.Canceled {
			return o.cancelled(start, append(attempts, name))
		}

		kind := oserrors.KindOf(err)
		o.logger.Warn("provider attempt failed",
			slog.String("provider", name),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()))

		o.health.RecordFailure(name, err)
		o.record(params.Query, chars, name, false, elapsed, 0, kind)
		attempts = append(attempts, name)
	}

	return UnifiedResult{
		FallbackAttempts: attempts,
		TotalTimeMS:      o.sinceMS(start),
		Error:            fmt.Sprintf("All %d %s providers failed", len(attempts), category),
	}
}

// attemptWithRetries dispatches to one provider with bounded retries and
// exponential backoff. Non-retryable kinds surface immediately to the
// fallback loop. Returns the results, the last attempt's elapsed time in
// milliseconds, and the final error.
func (o *Orchestrator) attemptWithRetries(ctx context.Context, name string, params provider.SearchParams) ([]provider.SearchResult, int64, error) {
	s, ok := o.registry.Get(name)
	if !ok {
		return nil, 0, oserrors.New(oserrors.KindProviderError, name, "provider not registered")
	}

	settings := o.config.ProviderSettings(name)
	retries := settings.MaxRetries
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	var lastErr error
	var elapsed int64

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := o.sleep(ctx, backoff(attempt-1)); err != nil {
				return nil, elapsed, err
			}
		}

		attemptStart := o.now()
		results, err := o.attempt(ctx, s, params, timeout)
		elapsed = o.now().Sub(attemptStart).Milliseconds()

		if err == nil {
			return results, elapsed, nil
		}
		lastErr = err

		if ctx.Err() != nil || !oserrors.IsRetryable(err) {
			return nil, elapsed, err
		}
	}

	return nil, elapsed, lastErr
}

// attempt races one provider call against its deadline. The timer and
// the call share a context, so whichever side wins tears the other down.
func (o *Orchestrator) attempt(ctx context.Context, s provider.Searcher, params provider.SearchParams, timeout time.Duration) ([]provider.SearchResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		results []provider.SearchResult
		err     error
	}

	// Buffered so a late adapter return never leaks the goroutine.
	ch := make(chan outcome, 1)
	go func() {
		results, err := s.Search(callCtx, params)
		ch <- outcome{results, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, normalizeError(s.Name(), out.err)
		}
		return out.results, nil
	case <-callCtx.Done():
		if ctx.Err() == context.Canceled {
			return nil, ctx.Err()
		}
		return nil, oserrors.New(oserrors.KindTimeout, s.Name(),
			fmt.Sprintf("attempt timed out after %s", timeout))
	}
}

// cancelled packages a caller-cancelled request.
func (o *Orchestrator) cancelled(start time.Time, attempts []string) UnifiedResult {
	if attempts == nil {
		attempts = []string{}
	}
	return UnifiedResult{
		FallbackAttempts: attempts,
		TotalTimeMS:      o.sinceMS(start),
		Error:            "cancelled",
	}
}

// record appends one attempt outcome to the tracker.
func (o *Orchestrator) record(query string, chars analyzer.Characteristics, name string, success bool, elapsed int64, resultCount int, kind oserrors.Kind) {
	o.tracker.Record(tracker.Record{
		Query:           query,
		Characteristics: chars,
		Provider:        name,
		Success:         success,
		ResponseTimeMS:  elapsed,
		ResultCount:     resultCount,
		Timestamp:       o.now(),
		ErrorKind:       kind,
	})
}

func (o *Orchestrator) sinceMS(start time.Time) int64 {
	return o.now().Sub(start).Milliseconds()
}

// normalizeError guarantees a classifiable error with a provider name.
func normalizeError(name string, err error) error {
	var se *oserrors.SearchError
	if errors.As(err, &se) {
		if se.Provider == "" {
			se.Provider = name
		}
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return oserrors.New(oserrors.KindTimeout, name, "provider call exceeded deadline")
	}
	return oserrors.Wrap(oserrors.KindAPIError, name, err)
}

// backoff computes the delay after the given zero-based failed attempt:
// min(backoffBase << attempt, backoffCap).
func backoff(attempt int) time.Duration {
	d := backoffBase << attempt
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still give cancellation a chance to win.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
