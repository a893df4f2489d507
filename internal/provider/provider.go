// Package provider defines the uniform contract between the orchestrator
// and back-end search adapters, plus the static capability descriptors
// the analyzer scores against.
package provider

import "context"

// Category distinguishes classic web search back-ends from AI-answer ones.
type Category string

const (
	// CategorySearch is the classic web-search category.
	CategorySearch Category = "search"
	// CategoryAIResponse is the AI-answer category.
	CategoryAIResponse Category = "ai_response"
)

// SearchParams are the uniform request parameters every adapter accepts.
type SearchParams struct {
	// Query is the raw natural-language query.
	Query string `json:"query"`
	// Limit caps the number of results (1..50, default 10).
	Limit int `json:"limit,omitempty"`
	// IncludeDomains restricts results to these hostnames, if supported.
	IncludeDomains []string `json:"include_domains,omitempty"`
	// ExcludeDomains excludes results from these hostnames, if supported.
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

// SearchResult is the uniform result shape every adapter returns.
type SearchResult struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Snippet        string  `json:"snippet"`
	Score          float64 `json:"score,omitempty"`
	SourceProvider string  `json:"source_provider"`
}

// Searcher is the capability every back-end adapter exposes.
// Errors returned from Search must be classifiable (a *errors.SearchError
// carrying a taxonomy kind and the provider name).
type Searcher interface {
	// Search executes the query against the back-end.
	Search(ctx context.Context, params SearchParams) ([]SearchResult, error)
	// Name is the stable lowercase provider name (may contain underscores).
	Name() string
	// Description is a human-readable summary of the back-end.
	Description() string
}

// ClampLimit normalizes a requested result limit into the 1..50 range,
// defaulting to 10 when unset.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 50:
		return 50
	default:
		return limit
	}
}
