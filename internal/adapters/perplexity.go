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

const (
	perplexityBaseURL = "https://api.perplexity.ai"
	perplexityModel   = "sonar"
)

// Perplexity is the adapter for the Perplexity answer API.
type Perplexity struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewPerplexity creates a Perplexity adapter.
func NewPerplexity(apiKey string) *Perplexity {
	return &Perplexity{
		client:  newHTTPClient(),
		apiKey:  apiKey,
		baseURL: perplexityBaseURL,
	}
}

// perplexityRequest is the /chat/completions request body.
type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// perplexityResponse is the subset of /chat/completions we consume.
type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Name implements provider.Searcher.
func (p *Perplexity) Name() string { return "perplexity" }

// Description implements provider.Searcher.
func (p *Perplexity) Description() string {
	return "Perplexity AI answers grounded in live web search"
}

// Search implements provider.Searcher. The answer becomes the first
// result; citations follow as URL-only results.
func (p *Perplexity) Search(ctx context.Context, params provider.SearchParams) ([]provider.SearchResult, error) {
	body, err := json.Marshal(perplexityRequest{
		Model: perplexityModel,
		Messages: []perplexityMessage{
			{Role: "user", Content: params.Query},
		},
	})
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, p.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, p.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, wrapTransportError(p.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(p.Name(), resp)
	}

	var parsed perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, oserrors.Wrap(oserrors.KindAPIError, p.Name(), fmt.Errorf("decode response: %w", err))
	}

	if len(parsed.Choices) == 0 {
		return nil, oserrors.New(oserrors.KindAPIError, p.Name(), "response contained no choices")
	}

	results := []provider.SearchResult{{
		Title:          "Perplexity Answer",
		Snippet:        parsed.Choices[0].Message.Content,
		SourceProvider: p.Name(),
	}}
	for _, citation := range parsed.Citations {
		results = append(results, provider.SearchResult{
			Title:          citation,
			URL:            citation,
			SourceProvider: p.Name(),
		})
	}
	return results, nil
}

var _ provider.Searcher = (*Perplexity)(nil)
