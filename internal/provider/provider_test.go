package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	name string
}

func (s *stubSearcher) Search(_ context.Context, _ SearchParams) ([]SearchResult, error) {
	return nil, nil
}
func (s *stubSearcher) Name() string        { return s.name }
func (s *stubSearcher) Description() string { return "stub" }

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 10},
		{1, 1},
		{25, 25},
		{50, 50},
		{51, 50},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in))
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubSearcher{name: "tavily"}, CategorySearch))
	require.NoError(t, r.Register(&stubSearcher{name: "perplexity"}, CategoryAIResponse))

	s, ok := r.Get("tavily")
	require.True(t, ok)
	assert.Equal(t, "tavily", s.Name())

	cat, ok := r.Category("perplexity")
	require.True(t, ok)
	assert.Equal(t, CategoryAIResponse, cat)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubSearcher{name: "brave"}, CategorySearch))
	assert.Error(t, r.Register(&stubSearcher{name: "brave"}, CategorySearch))
}

func TestRegistry_NamesByCategory(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubSearcher{name: "kagi"}, CategorySearch))
	require.NoError(t, r.Register(&stubSearcher{name: "brave"}, CategorySearch))
	require.NoError(t, r.Register(&stubSearcher{name: "perplexity"}, CategoryAIResponse))

	assert.Equal(t, []string{"brave", "kagi"}, r.Names(CategorySearch))
	assert.Equal(t, []string{"perplexity"}, r.Names(CategoryAIResponse))
	assert.Equal(t, []string{"brave", "kagi", "perplexity"}, r.AllNames())
	assert.Equal(t, 3, r.Len())
}

func TestDescriptor_IsStrongFor(t *testing.T) {
	d := Descriptors["kagi"]
	assert.True(t, d.IsStrongFor(QueryTypeTechnical))
	assert.False(t, d.IsStrongFor(QueryTypeCurrentEvents))
}

func TestDescriptor_CoversDomain(t *testing.T) {
	brave := Descriptors["brave"]
	assert.True(t, brave.CoversDomain("github.com"))
	assert.True(t, brave.CoversDomain("gist.github.com"))
	assert.False(t, brave.CoversDomain("example.org"))

	perplexity := Descriptors["perplexity"]
	assert.True(t, perplexity.CoversDomain("anything.example"))
}

func TestDescriptorFor_UnknownGetsNeutralProfile(t *testing.T) {
	d := DescriptorFor("custom_engine", CategorySearch)
	assert.Equal(t, "custom_engine", d.Name)
	assert.Equal(t, 0.5, d.RecencyScore)
	assert.Empty(t, d.StrongFor)
}

// Capability values in the static tables drive recommendation confidence;
// pin the load-bearing ones.
func TestDescriptors_GroundTruth(t *testing.T) {
	kagi := Descriptors["kagi"]
	assert.True(t, kagi.IsStrongFor(QueryTypeTechnical))
	assert.True(t, kagi.NoAds)
	assert.True(t, kagi.PrivacyFocused)
	assert.False(t, kagi.FastResponse)

	tavily := Descriptors["tavily"]
	assert.True(t, tavily.IsStrongFor(QueryTypeAcademic))
	assert.GreaterOrEqual(t, tavily.RecencyScore, 0.8)
}
