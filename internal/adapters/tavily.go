package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

const tavilyBaseURL = "https://api.tavily.com"

// Tavily is the adapter for the Tavily search API.
type Tavily struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewTavily creates a Tavily adapter.
func NewTavily(apiKey string) *Tavily {
	return &Tavily{
		client:  newHTTPClient(),
		apiKey:  apiKey,
		baseURL: tavilyBaseURL,
	}
}

// tavilyRequest is the /search request body.
type tavilyRequest struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

// tavilyResponse is the /search response body.
type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Name implements provider.Searcher.
func (t *Tavily) Name() string { return "tavily" }

// Description implements provider.Searcher.
func (t *Tavily) Description() string {
	return "Tavily AI-optimized web search with factual, sourced results"
}

// Search implements provider.Searcher.
func (t *Tavily) Search(ctx context.Context, params provider.SearchParams) ([]provider.SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:          params.Query,
		MaxResults:     provider.ClampLimit(params.Limit),
		IncludeDomains: params.IncludeDomains,
		ExcludeDomains: params.ExcludeDomains,
	})
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, t.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, t.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, wrapTransportError(t.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(t.Name(), resp)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, oserrors.Wrap(oserrors.KindAPIError, t.Name(), fmt.Errorf("decode response: %w", err))
	}

	results := make([]provider.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, provider.SearchResult{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Content,
			Score:          r.Score,
			SourceProvider: t.Name(),
		})
	}
	return results, nil
}

var _ provider.Searcher = (*Tavily)(nil)
