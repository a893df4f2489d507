// Package tracker maintains rolling per-provider performance statistics
// and produces the adaptive ranking the orchestrator dispatches by.
//
// Aggregates are updated incrementally on every record (Welford-style
// running means), never by scanning history. The only O(n) work in the
// hot path is the recent-window recomputation, which filters the
// provider's slice of the capped history buffer.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// DefaultMaxHistory caps the performance record buffer.
// On-demand deployments drop this to 100 via the config layer.
const DefaultMaxHistory = 1000

// Adaptive ranking weights. They sum to 1.0.
const (
	weightOverall      = 0.2
	weightRecent       = 0.3
	weightQueryType    = 0.4
	weightLatency      = 0.1
	latencyCeilingMS   = 30000.0
	minTypeSampleCount = 3

	// noStatsScore is assigned to providers with no recorded history.
	noStatsScore = 0.5
)

// Record is one dispatched attempt, success or failure.
type Record struct {
	Query           string                   `json:"query"`
	Characteristics analyzer.Characteristics `json:"characteristics"`
	Provider        string                   `json:"provider_used"`
	Success         bool                     `json:"success"`
	ResponseTimeMS  int64                    `json:"response_time_ms"`
	ResultCount     int                      `json:"result_count"`
	Timestamp       time.Time                `json:"timestamp"`
	ErrorKind       oserrors.Kind            `json:"error_kind,omitempty"`
	UserFeedback    string                   `json:"user_feedback,omitempty"`
}

// TypeStats are the incremental per-query-type aggregates.
type TypeStats struct {
	Count           int     `json:"count"`
	SuccessRate     float64 `json:"success_rate"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

// RecentWindows are sliding success rates over the trailing hour/day/week.
type RecentWindows struct {
	LastHour float64 `json:"last_hour"`
	LastDay  float64 `json:"last_day"`
	LastWeek float64 `json:"last_week"`
}

// ProviderStats are the rolling aggregates for one provider.
type ProviderStats struct {
	TotalRequests        int                                  `json:"total_requests"`
	SuccessfulRequests   int                                  `json:"successful_requests"`
	FailedRequests       int                                  `json:"failed_requests"`
	SuccessRate          float64                              `json:"success_rate"`
	AverageResponseTime  float64                              `json:"average_response_time"`
	QueryTypePerformance map[provider.QueryType]*TypeStats    `json:"query_type_performance"`
	RecentPerformance    RecentWindows                        `json:"recent_performance"`
}

// clone returns a deep copy safe to hand to callers.
func (s *ProviderStats) clone() ProviderStats {
	out := *s
	out.QueryTypePerformance = make(map[provider.QueryType]*TypeStats, len(s.QueryTypePerformance))
	for qt, ts := range s.QueryTypePerformance {
		copied := *ts
		out.QueryTypePerformance[qt] = &copied
	}
	return out
}

// Tracker owns the performance history and aggregates.
// Safe for concurrent use; a single lock serializes all mutation.
type Tracker struct {
	mu         sync.Mutex
	maxHistory int
	history    *ringBuffer[Record]
	stats      map[string]*ProviderStats
	now        func() time.Time
	onChange   func()
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMaxHistory caps the record buffer.
func WithMaxHistory(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxHistory = n
		}
	}
}

// WithNowFunc sets the time source used for recent-window math.
func WithNowFunc(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a tracker with the default history cap.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		maxHistory: DefaultMaxHistory,
		stats:      make(map[string]*ProviderStats),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.history = newRingBuffer[Record](t.maxHistory)
	return t
}

// SetOnChange installs the mutation hook used to schedule snapshot saves.
func (t *Tracker) SetOnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Record appends an attempt outcome and updates the provider aggregates.
func (t *Tracker) Record(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.history.Add(rec)
	t.update(rec)

	if t.onChange != nil {
		t.onChange()
	}
}

// update applies one record to the provider's aggregates.
// Caller must hold the lock.
func (t *Tracker) update(rec Record) {
	st, ok := t.stats[rec.Provider]
	if !ok {
		st = &ProviderStats{
			QueryTypePerformance: make(map[provider.QueryType]*TypeStats),
		}
		t.stats[rec.Provider] = st
	}

	st.TotalRequests++
	if rec.Success {
		st.SuccessfulRequests++
	} else {
		st.FailedRequests++
	}
	st.SuccessRate = float64(st.SuccessfulRequests) / float64(st.TotalRequests)
	st.AverageResponseTime += (float64(rec.ResponseTimeMS) - st.AverageResponseTime) / float64(st.TotalRequests)

	qt := rec.Characteristics.QueryType
	if qt != "" {
		ts, ok := st.QueryTypePerformance[qt]
		if !ok {
			ts = &TypeStats{}
			st.QueryTypePerformance[qt] = ts
		}
		ts.Count++
		ts.AvgResponseTime += (float64(rec.ResponseTimeMS) - ts.AvgResponseTime) / float64(ts.Count)
		success := 0.0
		if rec.Success {
			success = 1.0
		}
		ts.SuccessRate = (ts.SuccessRate*float64(ts.Count-1) + success) / float64(ts.Count)
	}

	st.RecentPerformance = t.recentWindows(rec.Provider)
}

// recentWindows recomputes the sliding success rates for one provider by
// filtering its records out of the history buffer. Caller must hold the
// lock.
func (t *Tracker) recentWindows(name string) RecentWindows {
	now := t.now()
	var hourTotal, hourOK, dayTotal, dayOK, weekTotal, weekOK int

	t.history.Each(func(rec Record) {
		if rec.Provider != name {
			return
		}
		age := now.Sub(rec.Timestamp)
		if age <= 7*24*time.Hour {
			weekTotal++
			if rec.Success {
				weekOK++
			}
		}
		if age <= 24*time.Hour {
			dayTotal++
			if rec.Success {
				dayOK++
			}
		}
		if age <= time.Hour {
			hourTotal++
			if rec.Success {
				hourOK++
			}
		}
	})

	return RecentWindows{
		LastHour: rate(hourOK, hourTotal),
		LastDay:  rate(dayOK, dayTotal),
		LastWeek: rate(weekOK, weekTotal),
	}
}

func rate(ok, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(ok) / float64(total)
}

// AdaptiveRanking orders the candidate providers by weighted historical
// performance for the given characteristics. Providers without history
// score 0.5; ties keep the candidates' input order. Returns names only.
func (t *Tracker) AdaptiveRanking(c analyzer.Characteristics, candidates []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	type scored struct {
		name  string
		score float64
	}

	scores := make([]scored, 0, len(candidates))
	for _, name := range candidates {
		scores = append(scores, scored{name: name, score: t.score(c, name)})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	names := make([]string, len(scores))
	for i, s := range scores {
		names[i] = s.name
	}
	return names
}

// score computes the weighted adaptive score for one provider.
// Caller must hold the lock.
func (t *Tracker) score(c analyzer.Characteristics, name string) float64 {
	st, ok := t.stats[name]
	if !ok || st.TotalRequests == 0 {
		return noStatsScore
	}

	typeRate := st.SuccessRate
	if ts, ok := st.QueryTypePerformance[c.QueryType]; ok && ts.Count >= minTypeSampleCount {
		typeRate = ts.SuccessRate
	}

	latency := 1.0 - st.AverageResponseTime/latencyCeilingMS
	if latency < 0 {
		latency = 0
	}

	score := weightOverall*st.SuccessRate +
		weightRecent*st.RecentPerformance.LastHour +
		weightQueryType*typeRate +
		weightLatency*latency

	// Weights always sum to 1.0; the division keeps the score normalized
	// if the weight table ever changes.
	return score / (weightOverall + weightRecent + weightQueryType + weightLatency)
}

// Stats returns a deep copy of the aggregates for every provider.
func (t *Tracker) Stats() map[string]ProviderStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]ProviderStats, len(t.stats))
	for name, st := range t.stats {
		out[name] = st.clone()
	}
	return out
}

// StatsFor returns a copy of one provider's aggregates.
func (t *Tracker) StatsFor(name string) (ProviderStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.stats[name]
	if !ok {
		return ProviderStats{}, false
	}
	return st.clone(), true
}

// History returns the performance records in FIFO order.
func (t *Tracker) History() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Items()
}

// Restore replays persisted records into the tracker, oldest first.
// Records beyond the history cap are dropped from the front.
func (t *Tracker) Restore(records []Record) {
	if len(records) > t.maxHistory {
		records = records[len(records)-t.maxHistory:]
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, rec := range records {
		t.history.Add(rec)
		t.update(rec)
	}
}

// ringBuffer is a fixed-capacity FIFO buffer. Oldest entries are evicted
// when full.
type ringBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultMaxHistory
	}
	return &ringBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends an item, evicting the oldest when full.
func (b *ringBuffer[T]) Add(item T) {
	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Each visits items in FIFO order.
func (b *ringBuffer[T]) Each(fn func(T)) {
	if b.size < b.capacity {
		for i := 0; i < b.size; i++ {
			fn(b.items[i])
		}
		return
	}
	for i := 0; i < b.capacity; i++ {
		fn(b.items[(b.head+i)%b.capacity])
	}
}

// Items returns a copy of the buffer contents in FIFO order.
func (b *ringBuffer[T]) Items() []T {
	out := make([]T, 0, b.size)
	b.Each(func(item T) { out = append(out, item) })
	return out
}
