package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

const braveBaseURL = "https://api.search.brave.com/res/v1"

// Brave is the adapter for the Brave Search API.
type Brave struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewBrave creates a Brave adapter.
func NewBrave(apiKey string) *Brave {
	return &Brave{
		client:  newHTTPClient(),
		apiKey:  apiKey,
		baseURL: braveBaseURL,
	}
}

// braveResponse is the subset of /web/search we consume.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Name implements provider.Searcher.
func (b *Brave) Name() string { return "brave" }

// Description implements provider.Searcher.
func (b *Brave) Description() string {
	return "Brave independent web search with strong operator support"
}

// Search implements provider.Searcher.
func (b *Brave) Search(ctx context.Context, params provider.SearchParams) ([]provider.SearchResult, error) {
	query := params.Query
	// Brave has no domain-filter parameters; fold them into operators.
	for _, d := range params.IncludeDomains {
		query += " site:" + d
	}
	for _, d := range params.ExcludeDomains {
		query += " -site:" + d
	}

	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	q.Set("count", strconv.Itoa(provider.ClampLimit(params.Limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/web/search?"+q.Encode(), nil)
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, b.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, wrapTransportError(b.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(b.Name(), resp)
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, oserrors.Wrap(oserrors.KindAPIError, b.Name(), fmt.Errorf("decode response: %w", err))
	}

	results := make([]provider.SearchResult, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, provider.SearchResult{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Description,
			SourceProvider: b.Name(),
		})
	}
	return results, nil
}

var _ provider.Searcher = (*Brave)(nil)
