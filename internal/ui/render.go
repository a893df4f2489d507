// Package ui renders orchestrator output for terminal use. The MCP
// server never goes through here; this is for the one-shot CLI commands.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/health"
	"github.com/Aman-CERP/omnisearch/internal/orchestrator"
)

// RenderResult formats a UnifiedResult for the terminal.
func RenderResult(res orchestrator.UnifiedResult, st Styles) string {
	var b strings.Builder

	if !res.Success {
		b.WriteString(st.Error.Render("search failed: "+res.Error) + "\n")
		if len(res.FallbackAttempts) > 0 {
			b.WriteString(st.Label.Render("tried: "+strings.Join(res.FallbackAttempts, ", ")) + "\n")
		}
		return b.String()
	}

	header := fmt.Sprintf("%d results via %s (%dms)", len(res.Results), res.ProviderUsed, res.TotalTimeMS)
	b.WriteString(st.Header.Render(header) + "\n")

	if len(res.FallbackAttempts) > 0 {
		b.WriteString(st.Warning.Render("fell back past: "+strings.Join(res.FallbackAttempts, ", ")) + "\n")
	}
	if res.QueryAnalysis != nil {
		analysis := fmt.Sprintf("query type %s, recommended %s (confidence %d)",
			res.QueryAnalysis.Type, res.QueryAnalysis.RecommendedProvider, res.QueryAnalysis.Confidence)
		b.WriteString(st.Label.Render(analysis) + "\n")
	}
	b.WriteString("\n")

	for i, r := range res.Results {
		b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, st.Header.Render(r.Title)))
		if r.URL != "" {
			b.WriteString("    " + st.URL.Render(r.URL) + "\n")
		}
		if r.Snippet != "" {
			b.WriteString("    " + r.Snippet + "\n")
		}
	}
	return b.String()
}

// RenderHealth formats the provider health table.
func RenderHealth(records map[string]health.ProviderHealth, availableSearch, availableAI []string, st Styles) string {
	var b strings.Builder

	b.WriteString(st.Header.Render("Provider health") + "\n\n")

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rec := records[name]
		status := st.Success.Render("available")
		switch {
		case rec.CircuitBreakerOpen:
			status = st.Error.Render("breaker open")
		case rec.RateLimitedUntil != nil:
			status = st.Warning.Render("cooling down until " + rec.RateLimitedUntil.Format("15:04:05"))
		case !rec.Available:
			status = st.Error.Render("unavailable")
		}

		b.WriteString(fmt.Sprintf("  %-14s %s", name, status))
		if rec.FailureCount > 0 {
			b.WriteString(st.Label.Render(fmt.Sprintf("  failures=%d", rec.FailureCount)))
		}
		if rec.LastError != nil {
			b.WriteString(st.Dim.Render("  last: " + string(rec.LastError.Kind)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.Label.Render("search: ") + strings.Join(availableSearch, ", ") + "\n")
	b.WriteString(st.Label.Render("ai_response: ") + strings.Join(availableAI, ", ") + "\n")
	return b.String()
}

// RenderAnalysis formats analyzer output for the terminal.
func RenderAnalysis(query string, chars analyzer.Characteristics, rec analyzer.Recommendation, scores []analyzer.ProviderScore, st Styles) string {
	var b strings.Builder

	b.WriteString(st.Header.Render("Analysis for: "+query) + "\n\n")
	b.WriteString(fmt.Sprintf("  type        %s\n", chars.QueryType))
	b.WriteString(fmt.Sprintf("  complexity  %s\n", chars.Complexity))
	b.WriteString(fmt.Sprintf("  intent      %s\n", chars.LikelyIntent))
	b.WriteString(fmt.Sprintf("  sentiment   %s\n", chars.Sentiment))
	b.WriteString(fmt.Sprintf("  recency     %v\n", chars.RequiresRecency))
	b.WriteString(fmt.Sprintf("  operators   %v\n", chars.HasOperators))
	if len(chars.DomainsMentioned) > 0 {
		b.WriteString(fmt.Sprintf("  domains     %s\n", strings.Join(chars.DomainsMentioned, ", ")))
	}
	if len(chars.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("  keywords    %s\n", strings.Join(chars.Keywords, ", ")))
	}

	b.WriteString("\n")
	if rec.Provider != "" {
		b.WriteString(st.Success.Render(fmt.Sprintf("recommended: %s (confidence %d)", rec.Provider, rec.Confidence)) + "\n")
		if rec.Reasoning != "" {
			b.WriteString(st.Label.Render("  "+rec.Reasoning) + "\n")
		}
	} else {
		b.WriteString(st.Warning.Render("no providers available to recommend") + "\n")
	}

	for _, s := range scores {
		b.WriteString(fmt.Sprintf("  %-14s %3d\n", s.Provider, s.Score))
	}
	return b.String()
}
