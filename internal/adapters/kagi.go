package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

const kagiBaseURL = "https://kagi.com/api/v0"

// Kagi is the adapter for the Kagi Search API.
type Kagi struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewKagi creates a Kagi search adapter.
func NewKagi(apiKey string) *Kagi {
	return &Kagi{
		client:  newHTTPClient(),
		apiKey:  apiKey,
		baseURL: kagiBaseURL,
	}
}

// kagiSearchResponse is the subset of /search we consume. Items with
// t=0 are web results; other types (related searches) are skipped.
type kagiSearchResponse struct {
	Data []struct {
		T       int    `json:"t"`
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"data"`
}

// Name implements provider.Searcher.
func (k *Kagi) Name() string { return "kagi" }

// Description implements provider.Searcher.
func (k *Kagi) Description() string {
	return "Kagi premium ad-free search with high-quality technical results"
}

// Search implements provider.Searcher.
func (k *Kagi) Search(ctx context.Context, params provider.SearchParams) ([]provider.SearchResult, error) {
	q := url.Values{}
	q.Set("q", params.Query)
	q.Set("limit", strconv.Itoa(provider.ClampLimit(params.Limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, k.Name(), err)
	}
	req.Header.Set("Authorization", "Bot "+k.apiKey)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, wrapTransportError(k.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(k.Name(), resp)
	}

	var parsed kagiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, oserrors.Wrap(oserrors.KindAPIError, k.Name(), fmt.Errorf("decode response: %w", err))
	}

	var results []provider.SearchResult
	for _, r := range parsed.Data {
		if r.T != 0 || r.URL == "" {
			continue
		}
		results = append(results, provider.SearchResult{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Snippet,
			SourceProvider: k.Name(),
		})
	}
	return results, nil
}

var _ provider.Searcher = (*Kagi)(nil)

// KagiFastGPT is the adapter for Kagi's FastGPT answer API.
type KagiFastGPT struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewKagiFastGPT creates a FastGPT adapter.
func NewKagiFastGPT(apiKey string) *KagiFastGPT {
	return &KagiFastGPT{
		client:  newHTTPClient(),
		apiKey:  apiKey,
		baseURL: kagiBaseURL,
	}
}

// fastGPTResponse is the /fastgpt response body.
type fastGPTResponse struct {
	Data struct {
		Output     string `json:"output"`
		References []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"references"`
	} `json:"data"`
}

// Name implements provider.Searcher.
func (k *KagiFastGPT) Name() string { return "kagi_fastgpt" }

// Description implements provider.Searcher.
func (k *KagiFastGPT) Description() string {
	return "Kagi FastGPT cited AI answers"
}

// Search implements provider.Searcher. The generated answer becomes the
// first result; cited references follow.
func (k *KagiFastGPT) Search(ctx context.Context, params provider.SearchParams) ([]provider.SearchResult, error) {
	body, err := json.Marshal(map[string]string{"query": params.Query})
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, k.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+"/fastgpt", bytes.NewReader(body))
	if err != nil {
		return nil, oserrors.Wrap(oserrors.KindInvalidInput, k.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+k.apiKey)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, wrapTransportError(k.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(k.Name(), resp)
	}

	var parsed fastGPTResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, oserrors.Wrap(oserrors.KindAPIError, k.Name(), fmt.Errorf("decode response: %w", err))
	}

	results := []provider.SearchResult{{
		Title:          "FastGPT Answer",
		Snippet:        parsed.Data.Output,
		SourceProvider: k.Name(),
	}}
	for _, ref := range parsed.Data.References {
		results = append(results, provider.SearchResult{
			Title:          ref.Title,
			URL:            ref.URL,
			Snippet:        ref.Snippet,
			SourceProvider: k.Name(),
		})
	}
	return results, nil
}

var _ provider.Searcher = (*KagiFastGPT)(nil)
