// Package mcp exposes the orchestrator over the Model Context Protocol.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/config"
	"github.com/Aman-CERP/omnisearch/internal/orchestrator"
	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/pkg/version"
)

// Server is the MCP front-end. It marshals tool calls into orchestrator
// invocations and serializes the results; all decisions live below it.
type Server struct {
	mcp    *mcp.Server
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// NewServer creates the MCP server and registers the tool surface.
func NewServer(orch *orchestrator.Orchestrator, logger *slog.Logger) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		orch:   orch,
		logger: logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "OmniSearch",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// registerTools registers the full tool surface.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "unified_search",
		Description: "Search the web through the best available back-end. Classifies the query, ranks healthy providers, and falls back automatically when one fails.",
	}, s.handleUnifiedSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "unified_ai_search",
		Description: "Ask an AI-answer back-end (Perplexity, Kagi FastGPT). Same health-aware fallback as unified_search, over the AI-response category.",
	}, s.handleUnifiedAISearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "provider_health",
		Description: "Report every provider's health record plus the currently dispatchable sets per category.",
	}, s.handleProviderHealth)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reset_provider_health",
		Description: "Clear a provider's failure state (circuit breaker, cooldowns) and return it to rotation.",
	}, s.handleResetProvider)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "configure_providers",
		Description: "Change provider priority order, the disabled set, or fallback behavior at runtime. Changes persist across restarts.",
	}, s.handleConfigureProviders)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_provider_config",
		Description: "Return the effective configuration, provider health, and per-category dispatch orders.",
	}, s.handleGetProviderConfig)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_query",
		Description: "Explain how a query would be classified and which provider would be recommended, without dispatching it.",
	}, s.handleAnalyzeQuery)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "performance_insights",
		Description: "Summarize provider performance: best overall, fastest, most reliable, trends, and full per-provider statistics.",
	}, s.handlePerformanceInsights)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_mode",
		Description: "Return the current dispatch mode (direct or unified).",
	}, s.handleGetMode)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_mode",
		Description: "Switch the dispatch mode between direct and unified. Takes effect for tool registration on next startup.",
	}, s.handleSetMode)

	s.logger.Info("MCP tools registered", slog.Int("count", 10))
}

// handleUnifiedSearch handles the unified_search tool.
func (s *Server) handleUnifiedSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	result, err := s.runSearch(ctx, input, false)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Result: result}, nil
}

// handleUnifiedAISearch handles the unified_ai_search tool.
func (s *Server) handleUnifiedAISearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	result, err := s.runSearch(ctx, input, true)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Result: result}, nil
}

// runSearch validates input and dispatches one orchestrated search.
func (s *Server) runSearch(ctx context.Context, input SearchInput, ai bool) (orchestrator.UnifiedResult, error) {
	if err := validateQuery(input.Query); err != nil {
		return orchestrator.UnifiedResult{}, err
	}

	start := time.Now()
	requestID := generateRequestID()
	tool := "unified_search"
	if ai {
		tool = "unified_ai_search"
	}

	s.logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("tool", tool),
		slog.String("query", input.Query),
		slog.Int("limit", input.Limit))

	params := provider.SearchParams{
		Query:          input.Query,
		Limit:          input.Limit,
		IncludeDomains: input.IncludeDomains,
		ExcludeDomains: input.ExcludeDomains,
	}

	var result orchestrator.UnifiedResult
	if ai {
		result = s.orch.AISearch(ctx, params)
	} else {
		result = s.orch.Search(ctx, params)
	}

	s.logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.String("tool", tool),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("success", result.Success),
		slog.String("provider", result.ProviderUsed),
		slog.Int("result_count", len(result.Results)))

	return result, nil
}

// handleProviderHealth handles the provider_health tool.
func (s *Server) handleProviderHealth(_ context.Context, _ *mcp.CallToolRequest, _ ProviderHealthInput) (
	*mcp.CallToolResult,
	ProviderHealthOutput,
	error,
) {
	all := s.orch.Health().All()

	out := ProviderHealthOutput{
		AvailableSearch:     orEmpty(s.orch.Available(provider.CategorySearch)),
		AvailableAIResponse: orEmpty(s.orch.Available(provider.CategoryAIResponse)),
	}

	// Report every registered provider, including ones with no health
	// record yet.
	for _, name := range s.orch.Registry().AllNames() {
		rec, ok := all[name]
		if !ok {
			rec.Available = true
		}
		out.Providers = append(out.Providers, ProviderHealthEntry{Name: name, Health: rec})
	}

	return nil, out, nil
}

// handleResetProvider handles the reset_provider_health tool.
func (s *Server) handleResetProvider(_ context.Context, _ *mcp.CallToolRequest, input ResetProviderInput) (
	*mcp.CallToolResult,
	ResetProviderOutput,
	error,
) {
	if input.ProviderName == "" {
		return nil, ResetProviderOutput{}, NewInvalidParamsError("provider_name is required")
	}
	if _, ok := s.orch.Registry().Get(input.ProviderName); !ok {
		return nil, ResetProviderOutput{}, NewInvalidParamsError(
			fmt.Sprintf("unknown provider %q", input.ProviderName))
	}

	s.orch.Health().Reset(input.ProviderName)
	s.logger.Info("provider health reset", slog.String("provider", input.ProviderName))

	return nil, ResetProviderOutput{ProviderName: input.ProviderName, Reset: true}, nil
}

// handleConfigureProviders handles the configure_providers tool.
func (s *Server) handleConfigureProviders(_ context.Context, _ *mcp.CallToolRequest, input ConfigureProvidersInput) (
	*mcp.CallToolResult,
	GetProviderConfigOutput,
	error,
) {
	cfg := s.orch.Config()

	ai := false
	switch input.Category {
	case "", string(provider.CategorySearch):
	case string(provider.CategoryAIResponse):
		ai = true
	default:
		return nil, GetProviderConfigOutput{}, NewInvalidParamsError(
			fmt.Sprintf("category must be %q or %q", provider.CategorySearch, provider.CategoryAIResponse))
	}

	if len(input.ProviderOrder) > 0 {
		cfg.SetOrder(ai, input.ProviderOrder)
	}
	if input.DisabledProviders != nil {
		cfg.SetDisabled(input.DisabledProviders)
	}
	if input.FallbackEnabled != nil {
		cfg.SetFallbackEnabled(*input.FallbackEnabled)
	}

	return s.providerConfigOutput()
}

// handleGetProviderConfig handles the get_provider_config tool.
func (s *Server) handleGetProviderConfig(_ context.Context, _ *mcp.CallToolRequest, _ GetProviderConfigInput) (
	*mcp.CallToolResult,
	GetProviderConfigOutput,
	error,
) {
	return s.providerConfigOutput()
}

func (s *Server) providerConfigOutput() (*mcp.CallToolResult, GetProviderConfigOutput, error) {
	cfg := s.orch.Config()
	return nil, GetProviderConfigOutput{
		Configuration:   cfg.Snapshot(),
		ProviderHealth:  s.orch.Health().All(),
		SearchOrder:     orEmpty(s.orch.Available(provider.CategorySearch)),
		AIResponseOrder: orEmpty(s.orch.Available(provider.CategoryAIResponse)),
	}, nil
}

// handleAnalyzeQuery handles the analyze_query tool.
func (s *Server) handleAnalyzeQuery(_ context.Context, _ *mcp.CallToolRequest, input AnalyzeQueryInput) (
	*mcp.CallToolResult,
	AnalyzeQueryOutput,
	error,
) {
	if err := validateQuery(input.Query); err != nil {
		return nil, AnalyzeQueryOutput{}, err
	}

	chars := s.orch.Analyzer().Analyze(input.Query)
	available := s.orch.Available(provider.CategorySearch)

	return nil, AnalyzeQueryOutput{
		Query:          input.Query,
		Analysis:       chars,
		Recommendation: analyzer.Recommend(chars, available),
		ProviderScores: analyzer.ScoreProviders(chars, available),
	}, nil
}

// handlePerformanceInsights handles the performance_insights tool.
func (s *Server) handlePerformanceInsights(_ context.Context, _ *mcp.CallToolRequest, _ PerformanceInsightsInput) (
	*mcp.CallToolResult,
	PerformanceInsightsOutput,
	error,
) {
	tr := s.orch.Tracker()
	return nil, PerformanceInsightsOutput{
		Insights:           tr.Insights(),
		ProviderStatistics: tr.Stats(),
		DetailedExport:     tr.History(),
	}, nil
}

// handleGetMode handles the get_mode tool.
func (s *Server) handleGetMode(_ context.Context, _ *mcp.CallToolRequest, _ GetModeInput) (
	*mcp.CallToolResult,
	ModeOutput,
	error,
) {
	return nil, ModeOutput{Mode: string(s.orch.Config().Mode())}, nil
}

// handleSetMode handles the set_mode tool.
func (s *Server) handleSetMode(_ context.Context, _ *mcp.CallToolRequest, input SetModeInput) (
	*mcp.CallToolResult,
	ModeOutput,
	error,
) {
	if !s.orch.Config().SetMode(config.Mode(input.Mode)) {
		return nil, ModeOutput{}, NewInvalidParamsError(
			fmt.Sprintf("mode must be %q or %q", config.ModeDirect, config.ModeUnified))
	}
	return nil, ModeOutput{Mode: input.Mode}, nil
}

// Serve runs the server over the stdio transport until the context ends.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}

// orEmpty turns a nil slice into an empty one so JSON shows [].
func orEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
