package provider

import "strings"

// QueryType classifies what a query is asking for.
type QueryType string

// Query types in declaration order. The analyzer breaks classification
// ties by this order, so it must stay stable.
const (
	QueryTypeFactual       QueryType = "factual"
	QueryTypeTechnical     QueryType = "technical"
	QueryTypeAcademic      QueryType = "academic"
	QueryTypeCurrentEvents QueryType = "current_events"
	QueryTypeCode          QueryType = "code"
	QueryTypeGeneral       QueryType = "general"
	QueryTypeLocal         QueryType = "local"
	QueryTypeProduct       QueryType = "product"
	QueryTypeDefinition    QueryType = "definition"
	QueryTypeHowTo         QueryType = "how_to"
)

// QueryTypes lists all query types in declaration order.
var QueryTypes = []QueryType{
	QueryTypeFactual,
	QueryTypeTechnical,
	QueryTypeAcademic,
	QueryTypeCurrentEvents,
	QueryTypeCode,
	QueryTypeGeneral,
	QueryTypeLocal,
	QueryTypeProduct,
	QueryTypeDefinition,
	QueryTypeHowTo,
}

// Descriptor is the static capability profile of a back-end.
// The analyzer scores candidates against these fields; the values are
// fixed per provider and never change at runtime.
type Descriptor struct {
	// Name is the stable lowercase provider name.
	Name string
	// Category is the dispatch category the provider serves.
	Category Category
	// StrongFor lists the query types the provider excels at.
	StrongFor []QueryType
	// RecencyScore rates freshness of results (0-1).
	RecencyScore float64
	// ComplexityHandling rates multi-clause query handling (0-1).
	ComplexityHandling float64
	// OperatorSupport rates search-operator support (0-1).
	OperatorSupport float64
	// GoodWithDomains lists hostnames the provider covers well;
	// "*" matches every domain, other entries match by substring.
	GoodWithDomains []string

	AIPowered      bool
	PrivacyFocused bool
	NoAds          bool
	FastResponse   bool
}

// IsStrongFor reports whether the provider declares strength for qt.
func (d Descriptor) IsStrongFor(qt QueryType) bool {
	for _, s := range d.StrongFor {
		if s == qt {
			return true
		}
	}
	return false
}

// CoversDomain reports whether the provider declares coverage of the
// given hostname. "*" covers everything; other entries match when either
// contains the other (so "github.com" covers "gist.github.com").
func (d Descriptor) CoversDomain(domain string) bool {
	for _, g := range d.GoodWithDomains {
		if g == "*" {
			return true
		}
		if strings.Contains(domain, g) || strings.Contains(g, domain) {
			return true
		}
	}
	return false
}

// Descriptors holds the capability tables for the standard back-ends.
// Scores and flags are load-bearing: the analyzer's recommendation
// confidence is a direct function of these values.
var Descriptors = map[string]Descriptor{
	"tavily": {
		Name:               "tavily",
		Category:           CategorySearch,
		StrongFor:          []QueryType{QueryTypeFactual, QueryTypeAcademic, QueryTypeCurrentEvents},
		RecencyScore:       0.9,
		ComplexityHandling: 0.8,
		OperatorSupport:    0.5,
		AIPowered:          true,
		FastResponse:       true,
	},
	"brave": {
		Name:               "brave",
		Category:           CategorySearch,
		StrongFor:          []QueryType{QueryTypeTechnical, QueryTypeCode},
		RecencyScore:       0.8,
		ComplexityHandling: 0.7,
		OperatorSupport:    0.9,
		GoodWithDomains:    []string{"github.com", "stackoverflow.com"},
		PrivacyFocused:     true,
	},
	"kagi": {
		Name:               "kagi",
		Category:           CategorySearch,
		StrongFor:          []QueryType{QueryTypeTechnical, QueryTypeAcademic, QueryTypeDefinition},
		RecencyScore:       0.7,
		ComplexityHandling: 0.9,
		OperatorSupport:    0.9,
		PrivacyFocused:     true,
		NoAds:              true,
	},
	"perplexity": {
		Name:               "perplexity",
		Category:           CategoryAIResponse,
		StrongFor:          []QueryType{QueryTypeFactual, QueryTypeCurrentEvents, QueryTypeHowTo},
		RecencyScore:       0.9,
		ComplexityHandling: 0.9,
		OperatorSupport:    0.3,
		GoodWithDomains:    []string{"*"},
		AIPowered:          true,
	},
	"kagi_fastgpt": {
		Name:               "kagi_fastgpt",
		Category:           CategoryAIResponse,
		StrongFor:          []QueryType{QueryTypeFactual, QueryTypeDefinition},
		RecencyScore:       0.8,
		ComplexityHandling: 0.8,
		OperatorSupport:    0.3,
		AIPowered:          true,
		PrivacyFocused:     true,
		NoAds:              true,
	},
}

// DescriptorFor returns the static descriptor for a provider name.
// Unknown providers get a neutral descriptor so user-registered adapters
// still participate in selection.
func DescriptorFor(name string, category Category) Descriptor {
	if d, ok := Descriptors[name]; ok {
		return d
	}
	return Descriptor{
		Name:               name,
		Category:           category,
		RecencyScore:       0.5,
		ComplexityHandling: 0.5,
		OperatorSupport:    0.5,
	}
}
