// Package skills defines the shared data model for the skill index:
// manifest metadata, index snapshots, content entries, search results,
// and usage statistics. Packages that build or query the index exchange
// these types; none of them hold references into index-internal state.
package skills

// SubSkillMeta is one sub-skill reference inside a parent manifest.
type SubSkillMeta struct {
	// Name identifies the sub-skill within its parent (e.g. "react").
	Name string `json:"name"`
	// File is the markdown path relative to the skill directory.
	File string `json:"file"`
	// Triggers are optional keywords for search discovery.
	Triggers []string `json:"triggers,omitempty"`
}

// SkillMeta is the parsed form of a skill's _meta.json manifest.
type SkillMeta struct {
	// Name must match the directory name: lowercase alphanumeric with hyphens.
	Name string `json:"name"`
	// Description is required, human-readable.
	Description string `json:"description"`
	// Tags are optional search tags.
	Tags []string `json:"tags,omitempty"`
	// SubSkills are optional nested documents for router-style skills.
	SubSkills []SubSkillMeta `json:"sub_skills,omitempty"`
	// Source is an optional provenance tag (e.g. "community", "official").
	Source string `json:"source,omitempty"`
}

// HasSubSkills reports whether this is a router/domain skill.
func (m *SkillMeta) HasSubSkills() bool {
	return len(m.SubSkills) > 0
}

// SubSkillNames returns the names of all sub-skills in manifest order.
func (m *SkillMeta) SubSkillNames() []string {
	if len(m.SubSkills) == 0 {
		return nil
	}
	names := make([]string, 0, len(m.SubSkills))
	for _, sub := range m.SubSkills {
		names = append(names, sub.Name)
	}
	return names
}

// FindSubSkill returns the sub-skill with the given name, or nil.
func (m *SkillMeta) FindSubSkill(name string) *SubSkillMeta {
	for i := range m.SubSkills {
		if m.SubSkills[i].Name == name {
			return &m.SubSkills[i]
		}
	}
	return nil
}

// AllTriggers returns skill-level tags plus every sub-skill trigger.
func (m *SkillMeta) AllTriggers() []string {
	triggers := make([]string, 0, len(m.Tags))
	triggers = append(triggers, m.Tags...)
	for _, sub := range m.SubSkills {
		triggers = append(triggers, sub.Triggers...)
	}
	return triggers
}

// Clone returns a deep copy so index snapshots never alias stored state.
func (m *SkillMeta) Clone() SkillMeta {
	out := *m
	out.Tags = append([]string(nil), m.Tags...)
	if m.SubSkills != nil {
		out.SubSkills = make([]SubSkillMeta, len(m.SubSkills))
		for i, sub := range m.SubSkills {
			out.SubSkills[i] = sub
			out.SubSkills[i].Triggers = append([]string(nil), sub.Triggers...)
		}
	}
	return out
}

// SkillListItem is the list-view shape: the manifest plus the
// approximate number of documents the skill carries (the primary
// document and its sub-skills; reference files are not counted).
type SkillListItem struct {
	SkillMeta
	FileCount int `json:"file_count"`
}

// NewSkillListItem derives the list-view item for a manifest.
func NewSkillListItem(meta SkillMeta) SkillListItem {
	return SkillListItem{SkillMeta: meta, FileCount: len(meta.SubSkills) + 1}
}

// NewSkillList derives list-view items for a slice of manifests,
// preserving order.
func NewSkillList(metas []SkillMeta) []SkillListItem {
	items := make([]SkillListItem, 0, len(metas))
	for _, meta := range metas {
		items = append(items, NewSkillListItem(meta))
	}
	return items
}
