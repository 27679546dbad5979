package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero uses default", 0, DefaultSearchLimit},
		{"negative uses default", -5, DefaultSearchLimit},
		{"in range kept", 25, 25},
		{"above max clamped", 500, MaxSearchLimit},
		{"exactly max kept", MaxSearchLimit, MaxSearchLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := SearchOptions{Limit: tt.limit}
			assert.Equal(t, tt.expected, opts.EffectiveLimit())
		})
	}
}

func TestNewSearchResultsSortsByScoreDescending(t *testing.T) {
	results := NewSearchResults("q", []SearchResult{
		{Domain: "low", Score: 0.5},
		{Domain: "high", Score: 3.0},
		{Domain: "mid", Score: 1.8},
	}, SearchOptions{})

	require.Len(t, results.Results, 3)
	assert.Equal(t, "high", results.Results[0].Domain)
	assert.Equal(t, "mid", results.Results[1].Domain)
	assert.Equal(t, "low", results.Results[2].Domain)
	assert.False(t, results.Truncated)
	assert.Equal(t, 3, results.TotalMatches)
}

func TestNewSearchResultsStableForEqualScores(t *testing.T) {
	results := NewSearchResults("q", []SearchResult{
		{Domain: "first", Score: 2.0},
		{Domain: "second", Score: 2.0},
		{Domain: "third", Score: 2.0},
	}, SearchOptions{})

	require.Len(t, results.Results, 3)
	assert.Equal(t, "first", results.Results[0].Domain)
	assert.Equal(t, "second", results.Results[1].Domain)
	assert.Equal(t, "third", results.Results[2].Domain)
}

func TestNewSearchResultsTruncation(t *testing.T) {
	var input []SearchResult
	for i := 0; i < 15; i++ {
		input = append(input, SearchResult{Domain: "skill", Score: float64(i)})
	}

	results := NewSearchResults("q", input, SearchOptions{Limit: 10})
	assert.Len(t, results.Results, 10)
	assert.Equal(t, 15, results.TotalMatches)
	assert.True(t, results.Truncated)

	// Exactly at the limit is not truncated.
	results = NewSearchResults("q", input[:10], SearchOptions{Limit: 10})
	assert.Len(t, results.Results, 10)
	assert.False(t, results.Truncated)
}

func TestSearchResultDisplayID(t *testing.T) {
	r := SearchResult{Domain: "frontend"}
	assert.Equal(t, "frontend", r.DisplayID())

	r.SubSkill = "react"
	assert.Equal(t, "frontend:react", r.DisplayID())
}

func TestSearchResultsTop(t *testing.T) {
	empty := NewSearchResults("q", nil, SearchOptions{})
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Top())

	results := NewSearchResults("q", []SearchResult{
		{Domain: "a", Score: 1.0},
		{Domain: "b", Score: 2.0},
	}, SearchOptions{})
	require.NotNil(t, results.Top())
	assert.Equal(t, "b", results.Top().Domain)
}

func TestSearchOptionsFilters(t *testing.T) {
	opts := SearchOptions{}
	assert.True(t, opts.AllowsDomain("anything"))
	assert.True(t, opts.AllowsMatchType(MatchName))

	opts = SearchOptions{Domains: []string{"frontend"}, MatchTypes: []MatchType{MatchTags}}
	assert.True(t, opts.AllowsDomain("frontend"))
	assert.False(t, opts.AllowsDomain("backend"))
	assert.True(t, opts.AllowsMatchType(MatchTags))
	assert.False(t, opts.AllowsMatchType(MatchName))
}

func TestMatchTypeWeights(t *testing.T) {
	assert.Equal(t, 3.0, MatchName.Weight())
	assert.Equal(t, 2.5, MatchTriggers.Weight())
	assert.Equal(t, 2.0, MatchTags.Weight())
	assert.Equal(t, 1.5, MatchDescription.Weight())
	assert.Equal(t, 1.0, MatchContent.Weight())
}
