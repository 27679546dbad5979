package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSnippetShortContent(t *testing.T) {
	snippet := ExtractSnippet("Use hooks for state", "hooks", DefaultSnippetContext)
	assert.Equal(t, "Use hooks for state", snippet)
}

func TestExtractSnippetAbsentQuery(t *testing.T) {
	assert.Equal(t, "", ExtractSnippet("Use hooks for state", "redux", DefaultSnippetContext))
	assert.Equal(t, "", ExtractSnippet("anything", "", DefaultSnippetContext))
}

func TestExtractSnippetCaseInsensitive(t *testing.T) {
	snippet := ExtractSnippet("Prefer React Hooks here", "HOOKS", DefaultSnippetContext)
	assert.Contains(t, snippet, "Hooks")
}

func TestExtractSnippetEllipses(t *testing.T) {
	prefix := strings.Repeat("alpha ", 30)
	suffix := strings.Repeat("omega ", 30)
	content := prefix + "needle" + " " + suffix

	snippet := ExtractSnippet(content, "needle", DefaultSnippetContext)
	assert.True(t, strings.HasPrefix(snippet, "..."))
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Contains(t, snippet, "needle")
}

func TestExtractSnippetNeverSplitsWords(t *testing.T) {
	prefix := strings.Repeat("supercalifragilistic ", 10)
	content := prefix + "needle " + prefix

	snippet := ExtractSnippet(content, "needle", DefaultSnippetContext)
	trimmed := strings.TrimSuffix(strings.TrimPrefix(snippet, "..."), "...")
	for _, word := range strings.Fields(trimmed) {
		if word != "needle" {
			assert.Equal(t, "supercalifragilistic", word)
		}
	}
}

func TestExtractSnippetCollapsesLines(t *testing.T) {
	content := "first line\nsecond needle line\n\nthird line"
	snippet := ExtractSnippet(content, "needle", DefaultSnippetContext)
	assert.NotContains(t, snippet, "\n")
	assert.Contains(t, snippet, "second needle line")
}

func TestExtractSnippetQueryAtBoundaries(t *testing.T) {
	content := "needle " + strings.Repeat("word ", 40) + "needle"

	snippet := ExtractSnippet(content, "needle", DefaultSnippetContext)
	// First occurrence wins; window starts at the beginning.
	assert.False(t, strings.HasPrefix(snippet, "..."))
	assert.True(t, strings.HasSuffix(snippet, "..."))
}
