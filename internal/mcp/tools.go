package mcp

import (
	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/config"
	"github.com/Aman-CERP/omnisearch/internal/health"
	"github.com/Aman-CERP/omnisearch/internal/orchestrator"
	"github.com/Aman-CERP/omnisearch/internal/tracker"
)

// SearchInput defines the input schema for unified_search and
// unified_ai_search.
type SearchInput struct {
	Query          string   `json:"query" jsonschema:"the search query to execute"`
	Limit          int      `json:"limit,omitempty" jsonschema:"maximum number of results (1-50, default 10)"`
	IncludeDomains []string `json:"include_domains,omitempty" jsonschema:"restrict results to these domains"`
	ExcludeDomains []string `json:"exclude_domains,omitempty" jsonschema:"exclude results from these domains"`
}

// ProviderHealthInput defines the input schema for provider_health
// (no parameters).
type ProviderHealthInput struct{}

// ProviderHealthEntry is one provider's health in the report.
type ProviderHealthEntry struct {
	Name   string                `json:"name"`
	Health health.ProviderHealth `json:"health"`
}

// ProviderHealthOutput defines the output schema for provider_health.
type ProviderHealthOutput struct {
	Providers           []ProviderHealthEntry `json:"providers"`
	AvailableSearch     []string              `json:"available_search"`
	AvailableAIResponse []string              `json:"available_ai_response"`
}

// ResetProviderInput defines the input schema for reset_provider_health.
type ResetProviderInput struct {
	ProviderName string `json:"provider_name" jsonschema:"the provider to reset"`
}

// ResetProviderOutput confirms a reset.
type ResetProviderOutput struct {
	ProviderName string `json:"provider_name"`
	Reset        bool   `json:"reset"`
}

// ConfigureProvidersInput defines the input schema for
// configure_providers. Omitted fields leave the current value untouched.
type ConfigureProvidersInput struct {
	ProviderOrder     []string `json:"provider_order,omitempty" jsonschema:"priority order for the category"`
	DisabledProviders []string `json:"disabled_providers,omitempty" jsonschema:"providers to disable (replaces the disabled set)"`
	FallbackEnabled   *bool    `json:"fallback_enabled,omitempty" jsonschema:"whether to fall back through alternates on failure"`
	Category          string   `json:"category,omitempty" jsonschema:"search or ai_response, default search"`
}

// GetProviderConfigInput defines the input schema for get_provider_config
// (no parameters).
type GetProviderConfigInput struct{}

// GetProviderConfigOutput defines the output schema for
// get_provider_config.
type GetProviderConfigOutput struct {
	Configuration   config.Config                    `json:"configuration"`
	ProviderHealth  map[string]health.ProviderHealth `json:"provider_health"`
	SearchOrder     []string                         `json:"search_order"`
	AIResponseOrder []string                         `json:"ai_response_order"`
}

// AnalyzeQueryInput defines the input schema for analyze_query.
type AnalyzeQueryInput struct {
	Query string `json:"query" jsonschema:"the query to analyze"`
}

// AnalyzeQueryOutput defines the output schema for analyze_query.
type AnalyzeQueryOutput struct {
	Query          string                   `json:"query"`
	Analysis       analyzer.Characteristics `json:"analysis"`
	Recommendation analyzer.Recommendation  `json:"recommendation"`
	ProviderScores []analyzer.ProviderScore `json:"provider_scores"`
}

// PerformanceInsightsInput defines the input schema for
// performance_insights (no parameters).
type PerformanceInsightsInput struct{}

// PerformanceInsightsOutput defines the output schema for
// performance_insights.
type PerformanceInsightsOutput struct {
	Insights           tracker.Insights                 `json:"insights"`
	ProviderStatistics map[string]tracker.ProviderStats `json:"provider_statistics"`
	DetailedExport     []tracker.Record                 `json:"detailed_export"`
}

// GetModeInput defines the input schema for get_mode (no parameters).
type GetModeInput struct{}

// ModeOutput carries the dispatch mode.
type ModeOutput struct {
	Mode string `json:"mode"`
}

// SetModeInput defines the input schema for set_mode.
type SetModeInput struct {
	Mode string `json:"mode" jsonschema:"direct or unified"`
}

// SearchOutput is the tool-level result envelope.
type SearchOutput struct {
	Result orchestrator.UnifiedResult `json:"result"`
}
