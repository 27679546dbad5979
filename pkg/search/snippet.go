package search

import "strings"

// DefaultSnippetContext is the excerpt half-window in characters.
const DefaultSnippetContext = 50

// ExtractSnippet returns a word-bounded excerpt centered on the first
// case-insensitive occurrence of the query, with "..." affixes when the
// window does not reach the content boundaries. Line breaks inside the
// window collapse to single spaces. Returns "" when the query is absent.
func ExtractSnippet(content, query string, contextChars int) string {
	if query == "" {
		return ""
	}

	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(query)

	pos := strings.Index(contentLower, queryLower)
	if pos < 0 {
		return ""
	}

	start := pos - contextChars
	if start < 0 {
		start = 0
	}
	end := pos + len(query) + contextChars
	if end > len(content) {
		end = len(content)
	}

	// Never split a word: expand outward to whitespace boundaries.
	start = findWordStart(content, start)
	end = findWordEnd(content, end)

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(strings.TrimSpace(content[start:end]))
	if end < len(content) {
		b.WriteString("...")
	}

	return collapseWhitespace(b.String())
}

func findWordStart(content string, pos int) int {
	for pos > 0 && !isSpace(content[pos-1]) {
		pos--
	}
	return pos
}

func findWordEnd(content string, pos int) int {
	for pos < len(content) && !isSpace(content[pos]) {
		pos++
	}
	return pos
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// collapseWhitespace joins the snippet's lines with single spaces,
// dropping blank lines.
func collapseWhitespace(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
