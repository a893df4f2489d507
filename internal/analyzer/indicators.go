package analyzer

import (
	"regexp"

	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// typeIndicators binds a query type to its ordered indicator phrases.
// Each matched phrase contributes its token count to the type's score,
// so longer, more specific phrases dominate single keywords.
type typeIndicators struct {
	Type       provider.QueryType
	Indicators []string
}

// queryTypeIndicators is matched in declaration order; classification
// ties resolve to the earliest entry. Keep the order stable.
var queryTypeIndicators = []typeIndicators{
	{provider.QueryTypeFactual, []string{
		"who is", "who was", "when did", "when was", "where is",
		"how many", "how much", "what year", "population of",
		"capital of", "statistics",
	}},
	{provider.QueryTypeTechnical, []string{
		"how to implement", "how to configure", "how to fix",
		"error", "debug", "api", "framework", "library",
		"install", "setup", "deploy", "integrate",
		"authentication", "database", "server", "protocol",
	}},
	{provider.QueryTypeAcademic, []string{
		"research", "paper", "papers", "study", "studies",
		"journal", "thesis", "peer reviewed", "academic",
		"scholarly", "citation", "literature review",
	}},
	{provider.QueryTypeCurrentEvents, []string{
		"latest news", "breaking", "today", "this week",
		"this month", "happening", "election", "headline",
	}},
	{provider.QueryTypeCode, []string{
		"code example", "snippet", "regex", "algorithm",
		"syntax", "compile", "runtime error", "stack trace",
		"function", "unit test",
	}},
	{provider.QueryTypeGeneral, nil},
	{provider.QueryTypeLocal, []string{
		"near me", "nearby", "closest", "in my area",
		"directions to", "open now",
	}},
	{provider.QueryTypeProduct, []string{
		"best", "review", "reviews", "price", "cheapest",
		"buy", "top 10", "alternative to", "deal",
	}},
	{provider.QueryTypeDefinition, []string{
		"what does", "meaning of", "define", "definition of",
		"what is a", "stands for",
	}},
	{provider.QueryTypeHowTo, []string{
		"how to", "how do i", "how can i", "steps to",
		"guide to", "tutorial", "walkthrough",
	}},
}

// recencyIndicators mark queries that need fresh results.
var recencyIndicators = []string{
	"latest", "recent", "today", "current", "breaking",
	"this week", "this month", "this year", "news", "right now",
	"up to date", "upcoming",
}

// stopWords are removed from extracted keywords.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "his": {}, "how": {},
	"who": {}, "why": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"with": {}, "without": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"from": {}, "into": {}, "onto": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "than": {}, "then": {},
	"them": {}, "they": {}, "their": {}, "there": {}, "have": {}, "been": {},
	"being": {}, "were": {}, "your": {}, "more": {}, "most": {}, "some": {},
	"such": {}, "only": {}, "over": {}, "very": {}, "also": {}, "just": {},
}

// Compiled patterns for feature extraction.
// Compiled at package init for performance.
var (
	// DNS-like hostnames: at least one dotted label plus a 2+ letter TLD.
	domainPattern = regexp.MustCompile(`\b(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}\b`)

	// Selector prefixes stripped from extracted domains.
	domainPrefixPattern = regexp.MustCompile(`^(site:|from:|@|on )`)

	// Search operators: field selectors, quoted phrases, boolean OR.
	operatorPattern = regexp.MustCompile(`(?:^|\s)(site:|filetype:|inurl:|intitle:|ext:)\S|"[^"]+"|(?:^|\s)OR(?:\s|$)|(?:^|\s)-\S`)

	// Standalone conjunctions counted toward complexity.
	conjunctionPattern = regexp.MustCompile(`(?i)\b(and|or|but|with|without|except)\b`)

	// Comparative forms counted toward complexity and sentiment.
	comparativePattern = regexp.MustCompile(`(?i)\b(vs|versus|compare|better|worse|than)\b`)

	// Investigative openers for sentiment.
	investigativePattern = regexp.MustCompile(`(?i)^(why|how come|what causes|what happens|investigate)\b`)

	// Word tokens for keyword extraction.
	tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9'._-]*`)
)
