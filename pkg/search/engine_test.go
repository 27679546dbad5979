package search

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

func writeSkill(t *testing.T, root string, meta skills.SkillMeta, content string) {
	t.Helper()
	dir := filepath.Join(root, meta.Name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, index.MetaFileName), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, index.SkillFileName), []byte(content), 0o644))
}

func newTestEngine(t *testing.T, build func(root string)) *Engine {
	t.Helper()
	root := t.TempDir()
	build(root)

	store := index.NewStore(root)
	require.NoError(t, store.Rebuild(context.Background()))
	return NewEngine(store)
}

func TestSearchSkillsExactNameOutranksEverything(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{Name: "devops", Description: "Deployment automation"}, "# DevOps")
		writeSkill(t, root, skills.SkillMeta{Name: "devops-advanced", Description: "More devops"}, "# Advanced")
		writeSkill(t, root, skills.SkillMeta{Name: "backend", Description: "devops adjacent", Tags: []string{"devops"}}, "# Backend")
	})

	results := engine.SearchSkills(context.Background(), "devops", skills.SearchOptions{})
	require.False(t, results.IsEmpty())

	top := results.Top()
	assert.Equal(t, "devops", top.Domain)
	assert.Equal(t, 3.0, top.Score)
	assert.Equal(t, skills.MatchName, top.MatchType)
}

func TestSearchSkillsCascadeScores(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{Name: "kubernetes-ops", Description: "Cluster management"}, "# K8s")
		writeSkill(t, root, skills.SkillMeta{Name: "backend", Description: "APIs", Tags: []string{"kubernetes"}}, "# Backend")
		writeSkill(t, root, skills.SkillMeta{
			Name:        "platform",
			Description: "Platform engineering",
			SubSkills:   []skills.SubSkillMeta{{Name: "helm", File: "helm.md", Triggers: []string{"kubernetes"}}},
		}, "# Platform")
		writeSkill(t, root, skills.SkillMeta{Name: "docs", Description: "kubernetes documentation writing"}, "# Docs")
	})

	results := engine.SearchSkills(context.Background(), "kubernetes", skills.SearchOptions{})
	require.Equal(t, 4, results.TotalMatches)

	scores := make(map[string]float64)
	types := make(map[string]skills.MatchType)
	for _, r := range results.Results {
		scores[r.Domain] = r.Score
		types[r.Domain] = r.MatchType
	}

	assert.InDelta(t, 2.4, scores["kubernetes-ops"], 1e-9) // name contains: 0.8 * 3.0
	assert.InDelta(t, 2.25, scores["platform"], 1e-9)      // trigger: 0.9 * 2.5
	assert.InDelta(t, 1.8, scores["backend"], 1e-9)        // tag: 0.9 * 2.0
	assert.InDelta(t, 1.5, scores["docs"], 1e-9)           // all terms in description

	assert.Equal(t, skills.MatchName, types["kubernetes-ops"])
	assert.Equal(t, skills.MatchTriggers, types["platform"])
	assert.Equal(t, skills.MatchTags, types["backend"])
	assert.Equal(t, skills.MatchDescription, types["docs"])

	// Trigger matches identify the skill, not the sub-skill.
	for _, r := range results.Results {
		assert.Empty(t, r.SubSkill)
	}
}

func TestSearchSkillsDescriptionPartialTerms(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{Name: "docs", Description: "terraform modules explained"}, "# Docs")
	})

	// One of two query terms appears in the description.
	results := engine.SearchSkills(context.Background(), "terraform ansible", skills.SearchOptions{})
	require.Equal(t, 1, results.TotalMatches)
	assert.InDelta(t, 0.75, results.Results[0].Score, 1e-9)
	assert.Equal(t, "terraform modules explained", results.Results[0].Snippet)
}

func TestSearchSkillsOneResultPerSkill(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		// Matches on name, tag, and description simultaneously.
		writeSkill(t, root, skills.SkillMeta{
			Name:        "terraform",
			Description: "terraform best practices",
			Tags:        []string{"terraform"},
		}, "# Terraform")
	})

	results := engine.SearchSkills(context.Background(), "terraform", skills.SearchOptions{})
	assert.Equal(t, 1, results.TotalMatches)
	assert.Equal(t, skills.MatchName, results.Results[0].MatchType)
}

func TestSearchSkillsFilters(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{Name: "alpha", Description: "shared keyword"}, "# A")
		writeSkill(t, root, skills.SkillMeta{Name: "beta", Description: "shared keyword"}, "# B")
	})
	ctx := context.Background()

	byDomain := engine.SearchSkills(ctx, "shared", skills.SearchOptions{Domains: []string{"beta"}})
	require.Equal(t, 1, byDomain.TotalMatches)
	assert.Equal(t, "beta", byDomain.Results[0].Domain)

	byType := engine.SearchSkills(ctx, "shared", skills.SearchOptions{MatchTypes: []skills.MatchType{skills.MatchTags}})
	assert.True(t, byType.IsEmpty())

	byScore := engine.SearchSkills(ctx, "shared", skills.SearchOptions{MinScore: 2.0})
	assert.True(t, byScore.IsEmpty())
}

func TestSearchSkillsNoMatches(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{Name: "alpha", Description: "something"}, "# A")
	})

	results := engine.SearchSkills(context.Background(), "zzz-absent", skills.SearchOptions{})
	assert.True(t, results.IsEmpty())
	assert.Equal(t, 0, results.TotalMatches)
	assert.False(t, results.Truncated)
}

func TestSearchContentScoresByFrequency(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		// 10 words, 2 occurrences.
		writeSkill(t, root, skills.SkillMeta{Name: "dense", Description: "d"},
			"docker docker compose file with several more words right here")
		// 10 words, 1 occurrence.
		writeSkill(t, root, skills.SkillMeta{Name: "sparse", Description: "s"},
			"docker appears just once in this much longer document text")
	})

	results := engine.SearchContent(context.Background(), "docker", skills.SearchOptions{})
	require.Equal(t, 2, results.TotalMatches)

	top := results.Top()
	assert.Equal(t, "dense", top.Domain)
	assert.InDelta(t, 0.2, top.Score, 1e-9)
	assert.Equal(t, skills.MatchContent, top.MatchType)
	assert.Equal(t, index.SkillFileName, top.File)
	assert.Contains(t, top.Snippet, "docker")

	assert.Equal(t, "sparse", results.Results[1].Domain)
	assert.InDelta(t, 0.1, results.Results[1].Score, 1e-9)
}

func TestSearchContentIncludesSubSkillsAndReferences(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{
			Name:        "frontend",
			Description: "f",
			SubSkills:   []skills.SubSkillMeta{{Name: "react", File: "react.md"}},
		}, "# Frontend")
		require.NoError(t, os.WriteFile(filepath.Join(root, "frontend", "react.md"), []byte("useEffect cleanup rules"), 0o644))

		refsDir := filepath.Join(root, "frontend", index.ReferencesDirName)
		require.NoError(t, os.MkdirAll(refsDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(refsDir, "hooks.md"), []byte("useEffect dependency arrays"), 0o644))
	})

	results := engine.SearchContent(context.Background(), "useEffect", skills.SearchOptions{})
	require.Equal(t, 2, results.TotalMatches)

	var foundSub, foundRef bool
	for _, r := range results.Results {
		assert.Equal(t, "frontend", r.Domain)
		if r.SubSkill == "react" {
			foundSub = true
		}
		if r.File == "references/hooks.md" {
			foundRef = true
		}
	}
	assert.True(t, foundSub)
	assert.True(t, foundRef)
}

func TestSearchAllPrefersMetadataOnDuplicate(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		writeSkill(t, root, skills.SkillMeta{Name: "terraform", Description: "d"},
			"terraform content mentioning terraform twice")
		writeSkill(t, root, skills.SkillMeta{Name: "other", Description: "o"},
			"terraform shows up only in this body")
	})

	results := engine.SearchAll(context.Background(), "terraform", skills.SearchOptions{})
	require.Equal(t, 2, results.TotalMatches)

	counts := make(map[string]int)
	for _, r := range results.Results {
		counts[r.Domain]++
	}
	assert.Equal(t, 1, counts["terraform"])
	assert.Equal(t, 1, counts["other"])

	top := results.Top()
	assert.Equal(t, "terraform", top.Domain)
	assert.Equal(t, skills.MatchName, top.MatchType)
}

func TestSearchTruncationReportsTotals(t *testing.T) {
	engine := newTestEngine(t, func(root string) {
		names := []string{"aaa", "bbb", "ccc", "ddd", "eee"}
		for _, name := range names {
			writeSkill(t, root, skills.SkillMeta{Name: name, Description: "common keyword"}, "# "+name)
		}
	})

	results := engine.SearchSkills(context.Background(), "common", skills.SearchOptions{Limit: 3})
	assert.Len(t, results.Results, 3)
	assert.Equal(t, 5, results.TotalMatches)
	assert.True(t, results.Truncated)
}
