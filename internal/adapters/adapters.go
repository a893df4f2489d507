// Package adapters implements the Searcher contract for the standard
// back-ends. Each adapter is a thin HTTP client that translates the
// provider's wire format into the uniform result shape and classifies
// HTTP failures into the error taxonomy.
//
// Adapters are registered only when their API key is present in the
// environment; a missing credential simply means the provider does not
// exist at runtime.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	oserrors "github.com/Aman-CERP/omnisearch/internal/errors"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// API key environment variables.
const (
	EnvTavilyKey     = "TAVILY_API_KEY"
	EnvBraveKey      = "BRAVE_API_KEY"
	EnvKagiKey       = "KAGI_API_KEY"
	EnvPerplexityKey = "PERPLEXITY_API_KEY"
)

// DefaultHTTPTimeout bounds a single adapter HTTP call. The orchestrator
// enforces its own per-attempt deadline on top via context.
const DefaultHTTPTimeout = 30 * time.Second

// RegisterAll registers every adapter whose credentials are configured.
// Returns the names registered, in registration order.
func RegisterAll(reg *provider.Registry, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	var registered []string
	add := func(s provider.Searcher, cat provider.Category) {
		if err := reg.Register(s, cat); err != nil {
			logger.Warn("adapter registration failed",
				slog.String("provider", s.Name()),
				slog.String("error", err.Error()))
			return
		}
		registered = append(registered, s.Name())
	}

	if key := os.Getenv(EnvTavilyKey); key != "" {
		add(NewTavily(key), provider.CategorySearch)
	}
	if key := os.Getenv(EnvBraveKey); key != "" {
		add(NewBrave(key), provider.CategorySearch)
	}
	if key := os.Getenv(EnvKagiKey); key != "" {
		add(NewKagi(key), provider.CategorySearch)
		add(NewKagiFastGPT(key), provider.CategoryAIResponse)
	}
	if key := os.Getenv(EnvPerplexityKey); key != "" {
		add(NewPerplexity(key), provider.CategoryAIResponse)
	}

	logger.Info("adapters registered", slog.Int("count", len(registered)))
	return registered
}

// newHTTPClient builds the shared client configuration.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// classifyResponse turns a non-2xx response into a taxonomy error,
// honoring rate-limit reset headers when present.
func classifyResponse(name string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = resp.Status
	}

	serr := oserrors.FromHTTPStatus(name, resp.StatusCode, message)
	if serr.Kind == oserrors.KindRateLimit {
		if reset, ok := parseRateLimitReset(resp.Header); ok {
			serr.WithRetryAfter(reset)
		}
	}
	return serr
}

// parseRateLimitReset reads Retry-After (delta seconds or HTTP date) or
// X-RateLimit-Reset (Unix epoch) headers.
func parseRateLimitReset(h http.Header) (time.Time, bool) {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
			return time.Now().Add(time.Duration(secs) * time.Second), true
		}
		if t, err := http.ParseTime(v); err == nil {
			return t, true
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && epoch > 0 {
			return time.Unix(epoch, 0), true
		}
	}
	return time.Time{}, false
}

// wrapTransportError classifies transport-level failures. Context
// cancellation and deadline errors pass through so the orchestrator can
// tell caller cancellation from provider failure.
func wrapTransportError(name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return oserrors.Wrap(oserrors.KindProviderError, name, fmt.Errorf("request failed: %w", err))
}
