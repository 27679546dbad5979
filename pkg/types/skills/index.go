package skills

import (
	"strings"
	"time"
)

// SkillIndex is the metadata half of the combined index: every loaded
// manifest sorted by name, plus the validation errors gathered during
// the last build.
type SkillIndex struct {
	Skills           []SkillMeta `json:"skills"`
	ValidationErrors []string    `json:"validation_errors,omitempty"`
	LastUpdated      time.Time   `json:"last_updated"`
}

// Find returns the skill with the given name, or nil.
func (idx SkillIndex) Find(name string) *SkillMeta {
	for i := range idx.Skills {
		if idx.Skills[i].Name == name {
			return &idx.Skills[i]
		}
	}
	return nil
}

// Len returns the number of indexed skills.
func (idx SkillIndex) Len() int {
	return len(idx.Skills)
}

// HasErrors reports whether the last build recorded validation errors.
func (idx SkillIndex) HasErrors() bool {
	return len(idx.ValidationErrors) > 0
}

// Clone deep-copies the index for handing out to readers.
func (idx SkillIndex) Clone() SkillIndex {
	out := SkillIndex{
		LastUpdated:      idx.LastUpdated,
		ValidationErrors: append([]string(nil), idx.ValidationErrors...),
	}
	if idx.Skills != nil {
		out.Skills = make([]SkillMeta, len(idx.Skills))
		for i := range idx.Skills {
			out.Skills[i] = idx.Skills[i].Clone()
		}
	}
	return out
}

// ContentEntry is one indexed document: the primary SKILL.md, a sub-skill
// document, or a reference file. Content is stored lowercased so matching
// is case-insensitive without re-folding on every query.
type ContentEntry struct {
	// Domain is the owning skill name.
	Domain string `json:"domain"`
	// SubSkill is the sub-skill name, empty for the primary document
	// and reference files.
	SubSkill string `json:"sub_skill,omitempty"`
	// File is the path relative to the skill directory.
	File string `json:"file"`
	// Content is the case-folded full text.
	Content string `json:"content"`
	// WordCount of the original text, used as the score denominator.
	WordCount int `json:"word_count"`
	// Headings are the markdown headings with markers stripped.
	Headings []string `json:"headings,omitempty"`
}

// NewContentEntry folds and dissects raw document text into an entry.
func NewContentEntry(domain, subSkill, file, content string) ContentEntry {
	return ContentEntry{
		Domain:    domain,
		SubSkill:  subSkill,
		File:      file,
		Content:   strings.ToLower(content),
		WordCount: len(strings.Fields(content)),
		Headings:  extractHeadings(content),
	}
}

func extractHeadings(content string) []string {
	var headings []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			headings = append(headings, strings.TrimSpace(strings.TrimLeft(line, "#")))
		}
	}
	return headings
}

// Key returns the identity key: "domain" for the primary document,
// "domain:sub_skill" for sub-skills, and "domain:file" for reference
// files so they never collide with the primary entry.
func (e ContentEntry) Key() string {
	if e.SubSkill != "" {
		return e.Domain + ":" + e.SubSkill
	}
	if e.File != "" && e.File != "SKILL.md" {
		return e.Domain + ":" + e.File
	}
	return e.Domain
}

// Matches reports whether the term occurs in the entry.
func (e ContentEntry) Matches(term string) bool {
	return strings.Contains(e.Content, strings.ToLower(term))
}

// CountMatches returns the occurrence count of the term.
func (e ContentEntry) CountMatches(term string) int {
	if term == "" {
		return 0
	}
	return strings.Count(e.Content, strings.ToLower(term))
}

// ContentIndex is the searchable half of the combined index, keyed by
// each entry's identity key.
type ContentIndex struct {
	Entries     map[string]ContentEntry `json:"entries"`
	LastUpdated time.Time               `json:"last_updated"`
}

// NewContentIndex returns an empty content index.
func NewContentIndex() ContentIndex {
	return ContentIndex{
		Entries:     make(map[string]ContentEntry),
		LastUpdated: time.Now().UTC(),
	}
}

// Insert adds or replaces an entry under its identity key.
func (ci *ContentIndex) Insert(entry ContentEntry) {
	ci.Entries[entry.Key()] = entry
	ci.LastUpdated = time.Now().UTC()
}

// Get returns the entry for a key, if present.
func (ci ContentIndex) Get(key string) (ContentEntry, bool) {
	e, ok := ci.Entries[key]
	return e, ok
}

// DomainEntries returns every entry belonging to a domain.
func (ci ContentIndex) DomainEntries(domain string) []ContentEntry {
	var out []ContentEntry
	for _, e := range ci.Entries {
		if e.Domain == domain {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the entry count.
func (ci ContentIndex) Len() int {
	return len(ci.Entries)
}

// Clone deep-copies the content index.
func (ci ContentIndex) Clone() ContentIndex {
	out := ContentIndex{
		Entries:     make(map[string]ContentEntry, len(ci.Entries)),
		LastUpdated: ci.LastUpdated,
	}
	for k, e := range ci.Entries {
		e.Headings = append([]string(nil), e.Headings...)
		out.Entries[k] = e
	}
	return out
}
