package skills

import "sort"

// MatchType is the field category a search result matched on.
type MatchType string

const (
	// MatchName means the skill name matched.
	MatchName MatchType = "name"
	// MatchDescription means the description matched.
	MatchDescription MatchType = "description"
	// MatchTags means a tag matched.
	MatchTags MatchType = "tags"
	// MatchTriggers means a sub-skill trigger matched.
	MatchTriggers MatchType = "triggers"
	// MatchContent means the document body matched.
	MatchContent MatchType = "content"
)

// Weight returns the fixed relevance weight for this match type.
func (m MatchType) Weight() float64 {
	switch m {
	case MatchName:
		return 3.0
	case MatchTriggers:
		return 2.5
	case MatchTags:
		return 2.0
	case MatchDescription:
		return 1.5
	case MatchContent:
		return 1.0
	default:
		return 0
	}
}

const (
	// DefaultSearchLimit applies when the caller does not set a limit.
	DefaultSearchLimit = 10
	// MaxSearchLimit caps caller-supplied limits.
	MaxSearchLimit = 100
)

// SearchOptions narrows and truncates a search.
type SearchOptions struct {
	// Limit caps returned results; <=0 uses DefaultSearchLimit, values
	// above MaxSearchLimit are clamped.
	Limit int `json:"limit,omitempty"`
	// MinScore drops results scoring below it. Zero means no floor.
	MinScore float64 `json:"min_score,omitempty"`
	// MatchTypes restricts metadata search to the listed field categories.
	MatchTypes []MatchType `json:"match_types,omitempty"`
	// Domains restricts results to the listed skill names.
	Domains []string `json:"domains,omitempty"`
}

// EffectiveLimit resolves the defaulted, clamped result cap.
func (o *SearchOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultSearchLimit
	}
	if o.Limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return o.Limit
}

// AllowsDomain applies the domain allow-list filter.
func (o *SearchOptions) AllowsDomain(domain string) bool {
	if len(o.Domains) == 0 {
		return true
	}
	for _, d := range o.Domains {
		if d == domain {
			return true
		}
	}
	return false
}

// AllowsMatchType applies the match-type allow-list filter.
func (o *SearchOptions) AllowsMatchType(mt MatchType) bool {
	if len(o.MatchTypes) == 0 {
		return true
	}
	for _, m := range o.MatchTypes {
		if m == mt {
			return true
		}
	}
	return false
}

// SearchResult is one ranked match.
type SearchResult struct {
	Domain    string    `json:"domain"`
	SubSkill  string    `json:"sub_skill,omitempty"`
	Score     float64   `json:"score"`
	MatchType MatchType `json:"match_type"`
	Snippet   string    `json:"snippet,omitempty"`
	File      string    `json:"file,omitempty"`
}

// DisplayID returns "domain" or "domain:sub_skill".
func (r *SearchResult) DisplayID() string {
	if r.SubSkill != "" {
		return r.Domain + ":" + r.SubSkill
	}
	return r.Domain
}

// SearchResults is the ranked, truncated outcome of one search.
type SearchResults struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
	// TotalMatches counts matches before truncation.
	TotalMatches int `json:"total_matches"`
	// Truncated is true iff TotalMatches exceeded the limit.
	Truncated bool `json:"truncated"`
}

// NewSearchResults sorts matches by score descending (stable, so equal
// scores keep input order) and truncates to the effective limit.
func NewSearchResults(query string, results []SearchResult, opts SearchOptions) SearchResults {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	limit := opts.EffectiveLimit()
	total := len(results)
	truncated := total > limit
	if truncated {
		results = results[:limit]
	}

	return SearchResults{
		Results:      results,
		Query:        query,
		TotalMatches: total,
		Truncated:    truncated,
	}
}

// IsEmpty reports whether the search found nothing.
func (r *SearchResults) IsEmpty() bool {
	return len(r.Results) == 0
}

// Top returns the best-ranked result, or nil.
func (r *SearchResults) Top() *SearchResult {
	if len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}
