package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/config"
	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/health"
	"github.com/Aman-CERP/omnisearch/internal/orchestrator"
	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/internal/tracker"
)

// stubSearcher returns canned results or a canned error.
type stubSearcher struct {
	name string
	err  error
}

func (s *stubSearcher) Search(_ context.Context, _ provider.SearchParams) ([]provider.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []provider.SearchResult{{Title: "t", URL: "https://example.com", Snippet: "s", SourceProvider: s.name}}, nil
}

func (s *stubSearcher) Name() string        { return s.name }
func (s *stubSearcher) Description() string { return "stub " + s.name }

func newTestServer(t *testing.T, searchers map[string]error) *Server {
	t.Helper()

	reg := provider.NewRegistry()
	for name, err := range searchers {
		cat := provider.CategorySearch
		if name == "perplexity" || name == "kagi_fastgpt" {
			cat = provider.CategoryAIResponse
		}
		require.NoError(t, reg.Register(&stubSearcher{name: name, err: err}, cat))
	}

	orch := orchestrator.New(orchestrator.Deps{
		Registry: reg,
		Analyzer: analyzer.New(),
		Health:   health.NewManager(),
		Tracker:  tracker.New(),
		Config:   config.NewStore(config.NewConfig()),
	}, orchestrator.WithSleeper(func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}))

	srv, err := NewServer(orch, nil)
	require.NoError(t, err)
	return srv
}

func TestUnifiedSearch_Success(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil})

	_, out, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "golang generics"})
	require.NoError(t, err)

	assert.True(t, out.Result.Success)
	assert.Equal(t, "tavily", out.Result.ProviderUsed)
	require.Len(t, out.Result.Results, 1)
}

func TestUnifiedSearch_EmptyQueryRejected(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil})

	_, _, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "   "})
	require.Error(t, err)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrCodeInvalidParams, te.Code)
}

func TestUnifiedSearch_AllFailedReturnsEnvelopeNotError(t *testing.T) {
	srv := newTestServer(t, map[string]error{
		"tavily": oserrors.New(oserrors.KindProviderError, "tavily", "500"),
	})

	_, out, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "plain query words"})
	require.NoError(t, err, "orchestrator failures stay in-band")

	assert.False(t, out.Result.Success)
	assert.Equal(t, "All 1 search providers failed", out.Result.Error)
	assert.Equal(t, []string{"tavily"}, out.Result.FallbackAttempts)
}

func TestUnifiedAISearch_UsesAICategory(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil, "perplexity": nil})

	_, out, err := srv.handleUnifiedAISearch(context.Background(), nil, SearchInput{Query: "why is the sky blue"})
	require.NoError(t, err)

	assert.True(t, out.Result.Success)
	assert.Equal(t, "perplexity", out.Result.ProviderUsed)
	assert.Nil(t, out.Result.QueryAnalysis)
}

func TestProviderHealth_ReportsAllRegistered(t *testing.T) {
	srv := newTestServer(t, map[string]error{
		"tavily":     nil,
		"kagi":       oserrors.New(oserrors.KindAuthentication, "kagi", "Invalid API key"),
		"perplexity": nil,
	})

	// A technical query recommends kagi first; its auth failure trips it
	// out of the available set while tavily serves the request.
	_, out, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "how to implement WebSocket authentication in Node.js"})
	require.NoError(t, err)
	require.True(t, out.Result.Success)

	_, report, err := srv.handleProviderHealth(context.Background(), nil, ProviderHealthInput{})
	require.NoError(t, err)

	assert.Len(t, report.Providers, 3)
	assert.NotContains(t, report.AvailableSearch, "kagi")
	assert.Contains(t, report.AvailableSearch, "tavily")
	assert.Equal(t, []string{"perplexity"}, report.AvailableAIResponse)
}

func TestResetProviderHealth(t *testing.T) {
	srv := newTestServer(t, map[string]error{
		"tavily": nil,
		"kagi":   oserrors.New(oserrors.KindAuthentication, "kagi", "Invalid API key"),
	})

	_, _, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "how to implement WebSocket authentication in Node.js"})
	require.NoError(t, err)
	require.False(t, srv.orch.Health().IsAvailable("kagi"))

	_, out, err := srv.handleResetProvider(context.Background(), nil, ResetProviderInput{ProviderName: "kagi"})
	require.NoError(t, err)
	assert.True(t, out.Reset)
	assert.True(t, srv.orch.Health().IsAvailable("kagi"))
}

func TestResetProviderHealth_UnknownProvider(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil})

	_, _, err := srv.handleResetProvider(context.Background(), nil, ResetProviderInput{ProviderName: "bogus"})
	require.Error(t, err)
}

func TestConfigureProviders(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil, "brave": nil})

	disable := false
	_, out, err := srv.handleConfigureProviders(context.Background(), nil, ConfigureProvidersInput{
		ProviderOrder:     []string{"brave", "tavily"},
		DisabledProviders: []string{},
		FallbackEnabled:   &disable,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"brave", "tavily"}, out.Configuration.ProviderOrder)
	assert.False(t, out.Configuration.FallbackEnabled)
	assert.Equal(t, []string{"brave", "tavily"}, out.SearchOrder)
}

func TestConfigureProviders_InvalidCategory(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil})

	_, _, err := srv.handleConfigureProviders(context.Background(), nil, ConfigureProvidersInput{
		ProviderOrder: []string{"tavily"},
		Category:      "bogus",
	})
	require.Error(t, err)
}

func TestAnalyzeQuery(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil, "kagi": nil, "brave": nil})

	_, out, err := srv.handleAnalyzeQuery(context.Background(), nil, AnalyzeQueryInput{
		Query: "how to implement WebSocket authentication in Node.js",
	})
	require.NoError(t, err)

	assert.Equal(t, provider.QueryTypeTechnical, out.Analysis.QueryType)
	assert.Equal(t, "kagi", out.Recommendation.Provider)
	assert.Len(t, out.ProviderScores, 3)
}

func TestPerformanceInsights(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil})

	_, _, err := srv.handleUnifiedSearch(context.Background(), nil, SearchInput{Query: "golang generics"})
	require.NoError(t, err)

	_, out, err := srv.handlePerformanceInsights(context.Background(), nil, PerformanceInsightsInput{})
	require.NoError(t, err)

	assert.Equal(t, "tavily", out.Insights.BestOverall)
	assert.Contains(t, out.ProviderStatistics, "tavily")
	assert.Len(t, out.DetailedExport, 1)
}

func TestGetSetMode(t *testing.T) {
	srv := newTestServer(t, map[string]error{"tavily": nil})

	_, mode, err := srv.handleGetMode(context.Background(), nil, GetModeInput{})
	require.NoError(t, err)
	assert.Equal(t, "unified", mode.Mode)

	_, mode, err = srv.handleSetMode(context.Background(), nil, SetModeInput{Mode: "direct"})
	require.NoError(t, err)
	assert.Equal(t, "direct", mode.Mode)

	_, _, err = srv.handleSetMode(context.Background(), nil, SetModeInput{Mode: "bogus"})
	require.Error(t, err)
}
