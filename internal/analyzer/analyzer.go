// Package analyzer extracts structured characteristics from raw search
// queries and scores candidate providers against them. Analysis is a pure
// function of the query string, so results are cached in an LRU cache.
package analyzer

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// DefaultCacheSize is the LRU cache size for analysis results.
const DefaultCacheSize = 10000

// Complexity bands a query by structural difficulty.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Sentiment captures the query's rhetorical stance.
type Sentiment string

const (
	SentimentNeutral       Sentiment = "neutral"
	SentimentInvestigative Sentiment = "investigative"
	SentimentComparative   Sentiment = "comparative"
)

// Intent is the coarse goal inferred from the other features.
type Intent string

const (
	IntentTroubleshoot   Intent = "troubleshoot"
	IntentCompareOptions Intent = "compare_options"
	IntentLearn          Intent = "learn"
	IntentLocate         Intent = "locate"
	IntentPurchase       Intent = "purchase"
	IntentResearch       Intent = "research"
	IntentDefine         Intent = "define"
	IntentGeneralInfo    Intent = "general_info"
)

// Characteristics is the feature vector extracted from one query.
type Characteristics struct {
	QueryType        provider.QueryType `json:"query_type"`
	DomainsMentioned []string           `json:"domains_mentioned,omitempty"`
	RequiresRecency  bool               `json:"requires_recency"`
	Complexity       Complexity         `json:"complexity"`
	HasOperators     bool               `json:"has_operators"`
	Sentiment        Sentiment          `json:"sentiment"`
	LikelyIntent     Intent             `json:"likely_intent"`
	Keywords         []string           `json:"keywords,omitempty"`
}

// Analyzer computes query characteristics with an LRU result cache.
// Safe for concurrent use.
type Analyzer struct {
	cache *lru.Cache[string, Characteristics]
}

// New creates an analyzer with the default cache size.
func New() *Analyzer {
	return NewWithCacheSize(DefaultCacheSize)
}

// NewWithCacheSize creates an analyzer with a custom cache size.
func NewWithCacheSize(size int) *Analyzer {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, Characteristics](size)
	return &Analyzer{cache: cache}
}

// Analyze extracts the characteristics of a query.
// The result is deterministic for a given query string.
func (a *Analyzer) Analyze(query string) Characteristics {
	// Operator detection is case-sensitive, so the cache is keyed on the
	// trimmed original query rather than its lowercased form.
	key := strings.TrimSpace(query)
	if key == "" {
		return Characteristics{
			QueryType:    provider.QueryTypeGeneral,
			Complexity:   ComplexitySimple,
			Sentiment:    SentimentNeutral,
			LikelyIntent: IntentGeneralInfo,
		}
	}

	if c, ok := a.cache.Get(key); ok {
		return c
	}

	c := analyze(key, strings.ToLower(key))
	a.cache.Add(key, c)
	return c
}

// analyze computes characteristics. Operator detection runs on the
// original query because boolean OR is only an operator in uppercase;
// everything else works on the lowercased form.
func analyze(original, lower string) Characteristics {
	c := Characteristics{
		QueryType:        classifyType(lower),
		DomainsMentioned: extractDomains(lower),
		RequiresRecency:  requiresRecency(lower),
		Complexity:       classifyComplexity(lower),
		HasOperators:     operatorPattern.MatchString(original),
		Sentiment:        classifySentiment(lower),
		Keywords:         extractKeywords(lower),
	}
	c.LikelyIntent = deriveIntent(lower, c)
	return c
}

// classifyType scores every query type by its matched indicator phrases.
// Each match contributes the phrase's token count; the highest total wins
// and ties resolve to declaration order. All-zero scores mean general.
func classifyType(lower string) provider.QueryType {
	best := provider.QueryTypeGeneral
	bestScore := 0

	for _, ti := range queryTypeIndicators {
		score := 0
		for _, ind := range ti.Indicators {
			if strings.Contains(lower, ind) {
				score += len(strings.Fields(ind))
			}
		}
		if score > bestScore {
			best = ti.Type
			bestScore = score
		}
	}

	return best
}

// classifyComplexity bands the query by word count, conjunctions,
// comparatives, and multi-question form.
func classifyComplexity(lower string) Complexity {
	score := 0

	words := len(strings.Fields(lower))
	switch {
	case words > 15:
		score += 2
	case words > 8:
		score++
	}

	if conjunctionPattern.MatchString(lower) {
		score++
	}
	if comparativePattern.MatchString(lower) {
		score++
	}
	if strings.Count(lower, "?") >= 2 {
		score += 2
	}

	switch {
	case score >= 3:
		return ComplexityComplex
	case score >= 1:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

// extractDomains pulls DNS-like hostnames out of the query, stripping
// selector prefixes and deduplicating while preserving order.
func extractDomains(lower string) []string {
	matches := domainPattern.FindAllString(lower, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var domains []string
	for _, m := range matches {
		m = domainPrefixPattern.ReplaceAllString(m, "")
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		domains = append(domains, m)
	}
	return domains
}

// requiresRecency reports whether the query asks for fresh information.
func requiresRecency(lower string) bool {
	for _, ind := range recencyIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// classifySentiment detects comparative and investigative stances.
// Comparative wins when both match: "why is X better than Y" is a
// comparison first.
func classifySentiment(lower string) Sentiment {
	if comparativePattern.MatchString(lower) {
		return SentimentComparative
	}
	if investigativePattern.MatchString(lower) {
		return SentimentInvestigative
	}
	return SentimentNeutral
}

// deriveIntent maps the extracted features onto a coarse goal.
func deriveIntent(lower string, c Characteristics) Intent {
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "fix") ||
		strings.Contains(lower, "not working") || strings.Contains(lower, "debug"):
		return IntentTroubleshoot
	case c.Sentiment == SentimentComparative:
		return IntentCompareOptions
	case c.QueryType == provider.QueryTypeLocal:
		return IntentLocate
	case c.QueryType == provider.QueryTypeProduct:
		return IntentPurchase
	case c.QueryType == provider.QueryTypeAcademic:
		return IntentResearch
	case c.QueryType == provider.QueryTypeDefinition:
		return IntentDefine
	case c.QueryType == provider.QueryTypeHowTo || c.QueryType == provider.QueryTypeTechnical ||
		c.QueryType == provider.QueryTypeCode:
		return IntentLearn
	default:
		return IntentGeneralInfo
	}
}

// extractKeywords returns the deduplicated content words of the query.
func extractKeywords(lower string) []string {
	tokens := tokenPattern.FindAllString(lower, -1)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	var keywords []string
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}
