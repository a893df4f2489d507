package tracker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// frozenNow returns a fixed time source for window math.
func frozenNow() (func() time.Time, time.Time) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }, base
}

func techChars() analyzer.Characteristics {
	return analyzer.Characteristics{QueryType: provider.QueryTypeTechnical}
}

func record(name string, success bool, rt int64, ts time.Time) Record {
	return Record{
		Query:           "q",
		Characteristics: techChars(),
		Provider:        name,
		Success:         success,
		ResponseTimeMS:  rt,
		ResultCount:     3,
		Timestamp:       ts,
	}
}

func TestRecord_IncrementalAggregates(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	tr.Record(record("tavily", true, 100, base))
	tr.Record(record("tavily", false, 300, base))
	tr.Record(record("tavily", true, 200, base))

	st, ok := tr.StatsFor("tavily")
	require.True(t, ok)

	assert.Equal(t, 3, st.TotalRequests)
	assert.Equal(t, 2, st.SuccessfulRequests)
	assert.Equal(t, 1, st.FailedRequests)
	assert.InDelta(t, 2.0/3.0, st.SuccessRate, 1e-9)
	assert.InDelta(t, 200.0, st.AverageResponseTime, 1e-9)

	ts := st.QueryTypePerformance[provider.QueryTypeTechnical]
	require.NotNil(t, ts)
	assert.Equal(t, 3, ts.Count)
	assert.InDelta(t, 2.0/3.0, ts.SuccessRate, 1e-9)
	assert.InDelta(t, 200.0, ts.AvgResponseTime, 1e-9)
}

func TestRecord_RecentWindows(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	// Old failure (3 days ago), mid-window failure (2 hours ago),
	// fresh success (5 minutes ago).
	tr.Record(record("brave", false, 100, base.Add(-72*time.Hour)))
	tr.Record(record("brave", false, 100, base.Add(-2*time.Hour)))
	tr.Record(record("brave", true, 100, base.Add(-5*time.Minute)))

	st, _ := tr.StatsFor("brave")
	assert.InDelta(t, 1.0, st.RecentPerformance.LastHour, 1e-9)
	assert.InDelta(t, 0.5, st.RecentPerformance.LastDay, 1e-9)
	assert.InDelta(t, 1.0/3.0, st.RecentPerformance.LastWeek, 1e-9)
}

func TestHistory_CapEvictsOldest(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now), WithMaxHistory(3))

	for i := 0; i < 5; i++ {
		rec := record("tavily", true, 100, base)
		rec.Query = fmt.Sprintf("q%d", i)
		tr.Record(rec)
	}

	hist := tr.History()
	require.Len(t, hist, 3)
	assert.Equal(t, "q2", hist[0].Query)
	assert.Equal(t, "q4", hist[2].Query)
}

func TestAdaptiveRanking_NoStatsScoresHalf(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	// tavily: perfect and fresh -> score near 1.0, beats the 0.5 default
	tr.Record(record("tavily", true, 100, base))

	ranked := tr.AdaptiveRanking(techChars(), []string{"fresh", "tavily"})
	assert.Equal(t, []string{"tavily", "fresh"}, ranked)
}

func TestAdaptiveRanking_PoorPerformerDropsBelowUnknown(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	// kagi: all failures -> score 0.1 at best (latency term only)
	for i := 0; i < 4; i++ {
		tr.Record(record("kagi", false, 100, base))
	}

	ranked := tr.AdaptiveRanking(techChars(), []string{"kagi", "unknown"})
	assert.Equal(t, []string{"unknown", "kagi"}, ranked)
}

func TestAdaptiveRanking_TypeRateNeedsThreeSamples(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	// Two technical failures, many general successes: with only two
	// technical samples the type rate falls back to the overall rate.
	general := analyzer.Characteristics{QueryType: provider.QueryTypeGeneral}
	for i := 0; i < 8; i++ {
		tr.Record(Record{Provider: "brave", Characteristics: general, Success: true, ResponseTimeMS: 100, Timestamp: base})
	}
	tr.Record(record("brave", false, 100, base))
	tr.Record(record("brave", false, 100, base))

	rankedTwo := tr.AdaptiveRanking(techChars(), []string{"brave", "unknown"})
	assert.Equal(t, "brave", rankedTwo[0], "overall rate 0.8 should still win")

	// A third technical failure activates the type-specific rate (0.0)
	tr.Record(record("brave", false, 100, base))
	rankedThree := tr.AdaptiveRanking(techChars(), []string{"brave", "unknown"})
	assert.Equal(t, "unknown", rankedThree[0])
}

func TestAdaptiveRanking_TiesKeepInputOrder(t *testing.T) {
	tr := New()
	ranked := tr.AdaptiveRanking(techChars(), []string{"c", "a", "b"})
	assert.Equal(t, []string{"c", "a", "b"}, ranked)
}

func TestRecord_ConstantTimePerUpdate(t *testing.T) {
	// Aggregates must not rescan history: with a large buffer, per-record
	// cost stays flat. This is a smoke check on the incremental-update
	// property rather than a benchmark.
	now, base := frozenNow()
	tr := New(WithNowFunc(now), WithMaxHistory(10000))

	for i := 0; i < 5000; i++ {
		tr.Record(record("tavily", i%2 == 0, int64(i%500), base))
	}

	st, _ := tr.StatsFor("tavily")
	assert.Equal(t, 5000, st.TotalRequests)
	assert.InDelta(t, 0.5, st.SuccessRate, 1e-9)
}

func TestRestore_ReplaysAndCaps(t *testing.T) {
	now, base := frozenNow()

	var records []Record
	for i := 0; i < 10; i++ {
		rec := record("tavily", true, 100, base)
		rec.Query = fmt.Sprintf("q%d", i)
		records = append(records, rec)
	}

	tr := New(WithNowFunc(now), WithMaxHistory(4))
	tr.Restore(records)

	hist := tr.History()
	require.Len(t, hist, 4)
	assert.Equal(t, "q6", hist[0].Query)

	st, ok := tr.StatsFor("tavily")
	require.True(t, ok)
	assert.Equal(t, 4, st.TotalRequests)
}

func TestInsights(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	// tavily: reliable and fast
	for i := 0; i < 5; i++ {
		tr.Record(record("tavily", true, 100, base.Add(-time.Minute)))
	}
	// kagi: slower, one failure, and all of it long ago (trending down
	// needs week success without hour success)
	tr.Record(record("kagi", true, 4000, base.Add(-48*time.Hour)))
	tr.Record(record("kagi", true, 4000, base.Add(-48*time.Hour)))
	tr.Record(record("kagi", false, 4000, base.Add(-48*time.Hour)))

	in := tr.Insights()
	assert.Equal(t, "tavily", in.BestOverall)
	assert.Equal(t, "tavily", in.BestForSpeed)
	assert.Equal(t, "tavily", in.MostReliable)
	assert.Contains(t, in.TrendingDown, "kagi")
	assert.NotContains(t, in.TrendingDown, "tavily")
}

func TestRecord_ErrorKindPersisted(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	rec := record("brave", false, 250, base)
	rec.ErrorKind = oserrors.KindRateLimit
	tr.Record(rec)

	hist := tr.History()
	require.Len(t, hist, 1)
	assert.Equal(t, oserrors.KindRateLimit, hist[0].ErrorKind)
}

func TestTracker_ConcurrentRecords(t *testing.T) {
	now, base := frozenNow()
	tr := New(WithNowFunc(now))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record(record("tavily", true, 50, base))
			}
		}()
	}
	wg.Wait()

	st, _ := tr.StatsFor("tavily")
	assert.Equal(t, 1000, st.TotalRequests)
}
