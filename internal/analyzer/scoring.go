package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// Score bonuses. The base score plus these fixed constants is the whole
// of provider scoring; confidence is the clamped total.
const (
	baseScore             = 50
	bonusStrongFor        = 30
	bonusGeneralFallback  = 10
	bonusComplexHandling  = 20
	bonusFastSimple       = 15
	bonusRecency          = 20
	bonusOperators        = 15
	bonusDomainCoverage   = 10
	bonusAIPoweredComplex = 10
	bonusPrivacy          = 5
	bonusNoAdsTechnical   = 10
)

// ProviderScore is one candidate's score with the reasons it earned.
type ProviderScore struct {
	Provider string   `json:"provider"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Recommendation is the analyzer's single best provider for a query.
type Recommendation struct {
	Provider     string   `json:"provider"`
	Confidence   int      `json:"confidence"`
	Reasoning    string   `json:"reasoning,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// ScoreProviders ranks the candidate providers against the query
// characteristics. The result is sorted by score descending; ties keep
// the candidates' input order.
func ScoreProviders(c Characteristics, candidates []string) []ProviderScore {
	scores := make([]ProviderScore, 0, len(candidates))
	for _, name := range candidates {
		scores = append(scores, scoreProvider(c, name))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// scoreProvider applies the bonus table to a single candidate.
func scoreProvider(c Characteristics, name string) ProviderScore {
	d := provider.DescriptorFor(name, provider.CategorySearch)

	score := baseScore
	var reasons []string

	if d.IsStrongFor(c.QueryType) {
		score += bonusStrongFor
		reasons = append(reasons, fmt.Sprintf("Excellent for %s queries", c.QueryType))
	} else if c.QueryType == provider.QueryTypeGeneral {
		score += bonusGeneralFallback
	}

	if c.Complexity == ComplexityComplex && d.ComplexityHandling >= 0.9 {
		score += bonusComplexHandling
		reasons = append(reasons, "Handles complex queries well")
	}
	if c.Complexity == ComplexitySimple && d.FastResponse {
		score += bonusFastSimple
		reasons = append(reasons, "Fast for simple queries")
	}

	if c.RequiresRecency && d.RecencyScore >= 0.8 {
		score += bonusRecency
		reasons = append(reasons, "Good with recent information")
	}

	if c.HasOperators && d.OperatorSupport >= 0.8 {
		score += bonusOperators
		reasons = append(reasons, "Strong operator support")
	}

	for _, domain := range c.DomainsMentioned {
		if d.CoversDomain(domain) {
			score += bonusDomainCoverage
			reasons = append(reasons, fmt.Sprintf("Good with %s", domain))
			break
		}
	}

	if d.AIPowered && c.Complexity == ComplexityComplex {
		score += bonusAIPoweredComplex
		reasons = append(reasons, "AI-powered analysis")
	}
	if d.PrivacyFocused && c.QueryType != provider.QueryTypeAcademic {
		score += bonusPrivacy
		reasons = append(reasons, "Privacy-focused")
	}
	if d.NoAds && c.QueryType == provider.QueryTypeTechnical {
		score += bonusNoAdsTechnical
		reasons = append(reasons, "No ads, clean results")
	}

	return ProviderScore{Provider: name, Score: score, Reasons: reasons}
}

// Recommend returns the top-scored candidate with a clamped confidence,
// composed reasoning, and up to two alternatives. An empty candidate set
// yields an empty recommendation with zero confidence.
func Recommend(c Characteristics, candidates []string) Recommendation {
	scores := ScoreProviders(c, candidates)
	if len(scores) == 0 {
		return Recommendation{Confidence: 0}
	}

	top := scores[0]
	rec := Recommendation{
		Provider:   top.Provider,
		Confidence: clampConfidence(top.Score),
		Reasoning:  strings.Join(top.Reasons, "; "),
	}

	for _, alt := range scores[1:] {
		rec.Alternatives = append(rec.Alternatives, alt.Provider)
		if len(rec.Alternatives) == 2 {
			break
		}
	}
	return rec
}

func clampConfidence(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
