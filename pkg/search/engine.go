// Package search scores index snapshots against query strings. The
// engine reads a copy of the index up front and scores against that, so
// a long search never holds the store's lock.
package search

import (
	"context"
	"strings"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/logger"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

// Scoring factors applied on top of the per-field weights.
const (
	exactNameFactor    = 1.0
	nameContainsFactor = 0.8
	tagFactor          = 0.9
	triggerFactor      = 0.9
)

// Engine ranks skills and content entries for a query.
type Engine struct {
	store *index.Store
}

// NewEngine creates a search engine over the given store.
func NewEngine(store *index.Store) *Engine {
	return &Engine{store: store}
}

// SearchSkills ranks skills by metadata: name, tags, sub-skill triggers,
// and description, in strict priority order. Each skill yields at most
// one result.
func (e *Engine) SearchSkills(ctx context.Context, query string, opts skills.SearchOptions) skills.SearchResults {
	skillIndex := e.store.SkillIndex()
	queryLower := strings.ToLower(query)
	terms := strings.Fields(queryLower)

	var results []skills.SearchResult
	for i := range skillIndex.Skills {
		meta := &skillIndex.Skills[i]

		result, ok := matchSkill(meta, queryLower, terms)
		if !ok {
			continue
		}
		if !opts.AllowsDomain(meta.Name) {
			continue
		}
		if !opts.AllowsMatchType(result.MatchType) {
			continue
		}
		if opts.MinScore > 0 && result.Score < opts.MinScore {
			continue
		}
		results = append(results, result)
	}

	logger.G(ctx).WithFields(map[string]any{"query": query, "matches": len(results)}).Debug("skill search")

	return skills.NewSearchResults(query, results, opts)
}

// SearchContent ranks content entries by term frequency: the sum of
// per-term occurrence counts over the entry's word count, times the
// content weight.
func (e *Engine) SearchContent(ctx context.Context, query string, opts skills.SearchOptions) skills.SearchResults {
	contentIndex := e.store.ContentIndex()
	queryLower := strings.ToLower(query)
	terms := strings.Fields(queryLower)

	var results []skills.SearchResult
	for _, entry := range contentIndex.Entries {
		if !opts.AllowsDomain(entry.Domain) {
			continue
		}

		matchCount := 0
		for _, term := range terms {
			matchCount += entry.CountMatches(term)
		}
		if matchCount == 0 {
			continue
		}

		wordCount := entry.WordCount
		if wordCount < 1 {
			wordCount = 1
		}
		score := float64(matchCount) / float64(wordCount) * skills.MatchContent.Weight()

		if opts.MinScore > 0 && score < opts.MinScore {
			continue
		}

		results = append(results, skills.SearchResult{
			Domain:    entry.Domain,
			SubSkill:  entry.SubSkill,
			Score:     score,
			MatchType: skills.MatchContent,
			Snippet:   ExtractSnippet(entry.Content, queryLower, DefaultSnippetContext),
			File:      entry.File,
		})
	}

	logger.G(ctx).WithFields(map[string]any{"query": query, "matches": len(results)}).Debug("content search")

	return skills.NewSearchResults(query, results, opts)
}

// SearchAll merges metadata and content results, deduplicated by
// (domain, sub-skill) with metadata matches taking precedence.
func (e *Engine) SearchAll(ctx context.Context, query string, opts skills.SearchOptions) skills.SearchResults {
	skillResults := e.SearchSkills(ctx, query, opts)
	contentResults := e.SearchContent(ctx, query, opts)

	merged := skillResults.Results
	for _, cr := range contentResults.Results {
		exists := false
		for _, r := range merged {
			if r.Domain == cr.Domain && r.SubSkill == cr.SubSkill {
				exists = true
				break
			}
		}
		if !exists {
			merged = append(merged, cr)
		}
	}

	return skills.NewSearchResults(query, merged, opts)
}

// matchSkill evaluates the metadata cascade, returning on the first hit:
// exact name, name contains, tags, triggers, then description terms.
func matchSkill(meta *skills.SkillMeta, queryLower string, terms []string) (skills.SearchResult, bool) {
	nameLower := strings.ToLower(meta.Name)

	if nameLower == queryLower {
		return skills.SearchResult{
			Domain:    meta.Name,
			Score:     exactNameFactor * skills.MatchName.Weight(),
			MatchType: skills.MatchName,
		}, true
	}

	if strings.Contains(nameLower, queryLower) {
		return skills.SearchResult{
			Domain:    meta.Name,
			Score:     nameContainsFactor * skills.MatchName.Weight(),
			MatchType: skills.MatchName,
		}, true
	}

	for _, tag := range meta.Tags {
		tagLower := strings.ToLower(tag)
		if tagLower == queryLower || strings.Contains(tagLower, queryLower) {
			return skills.SearchResult{
				Domain:    meta.Name,
				Score:     tagFactor * skills.MatchTags.Weight(),
				MatchType: skills.MatchTags,
			}, true
		}
	}

	for _, sub := range meta.SubSkills {
		for _, trigger := range sub.Triggers {
			triggerLower := strings.ToLower(trigger)
			if triggerLower == queryLower || strings.Contains(triggerLower, queryLower) {
				return skills.SearchResult{
					Domain:    meta.Name,
					Score:     triggerFactor * skills.MatchTriggers.Weight(),
					MatchType: skills.MatchTriggers,
				}, true
			}
		}
	}

	if len(terms) > 0 {
		descLower := strings.ToLower(meta.Description)
		matched := 0
		for _, term := range terms {
			if strings.Contains(descLower, term) {
				matched++
			}
		}
		if matched > 0 {
			return skills.SearchResult{
				Domain:    meta.Name,
				Score:     float64(matched) / float64(len(terms)) * skills.MatchDescription.Weight(),
				MatchType: skills.MatchDescription,
				Snippet:   meta.Description,
			}, true
		}
	}

	return skills.SearchResult{}, false
}
