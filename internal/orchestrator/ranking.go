package orchestrator

import (
	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/provider"
)

// Available returns the dispatchable providers for a category: the
// configured priority order intersected with the registered, enabled,
// and currently healthy set. Registered providers missing from the
// configured order are appended after it so a custom adapter is never
// silently unreachable.
func (o *Orchestrator) Available(category provider.Category) []string {
	order := o.config.Order(category == provider.CategoryAIResponse)
	registered := o.registry.Names(category)

	inOrder := make(map[string]struct{}, len(order))
	var candidates []string
	for _, name := range order {
		inOrder[name] = struct{}{}
		if containsName(registered, name) {
			candidates = append(candidates, name)
		}
	}
	for _, name := range registered {
		if _, ok := inOrder[name]; !ok {
			candidates = append(candidates, name)
		}
	}

	var available []string
	for _, name := range candidates {
		if o.config.IsEnabled(name) && o.health.IsAvailable(name) {
			available = append(available, name)
		}
	}
	return available
}

// dispatchOrder combines the analyzer recommendation with the adaptive
// ranking. A recommendation with confidence above the gate leads the
// order; otherwise the adaptive ranking is used unchanged.
func (o *Orchestrator) dispatchOrder(chars analyzer.Characteristics, rec analyzer.Recommendation, available []string) []string {
	adaptive := o.tracker.AdaptiveRanking(chars, available)

	if rec.Provider == "" || rec.Confidence <= confidenceGate || !containsName(available, rec.Provider) {
		return adaptive
	}

	order := make([]string, 0, len(adaptive))
	order = append(order, rec.Provider)
	for _, name := range adaptive {
		if name != rec.Provider {
			order = append(order, name)
		}
	}
	return order
}

func containsName(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}
