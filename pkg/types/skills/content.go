package skills

// SkillContent is the response shape for a primary document fetch.
type SkillContent struct {
	Name          string   `json:"name"`
	Content       string   `json:"content"`
	SubSkills     []string `json:"sub_skills"`
	HasReferences bool     `json:"has_references"`
}

// SubSkillContent is the response shape for a sub-skill document fetch.
type SubSkillContent struct {
	Domain   string `json:"domain"`
	SubSkill string `json:"sub_skill"`
	Content  string `json:"content"`
}

// BatchRequest asks for one document: the primary SKILL.md when SubSkill
// is empty, otherwise the named sub-skill.
type BatchRequest struct {
	Domain   string `json:"domain"`
	SubSkill string `json:"sub_skill,omitempty"`
}

// BatchItemKind discriminates the three batch result variants.
type BatchItemKind string

const (
	// BatchItemSkill carries primary document content.
	BatchItemSkill BatchItemKind = "skill"
	// BatchItemSubSkill carries sub-skill document content.
	BatchItemSubSkill BatchItemKind = "sub_skill"
	// BatchItemError carries a per-item failure.
	BatchItemError BatchItemKind = "error"
)

// BatchResult is a closed tagged variant: exactly one of Skill, SubSkill,
// or Error is set, indicated by Kind. Each item in a batch resolves
// independently, so one failing domain never poisons the rest.
type BatchResult struct {
	Kind     BatchItemKind    `json:"kind"`
	Skill    *SkillContent    `json:"skill,omitempty"`
	SubSkill *SubSkillContent `json:"sub_skill,omitempty"`
	Error    *BatchError      `json:"error,omitempty"`
}

// BatchError is the per-item failure payload.
type BatchError struct {
	Domain  string `json:"domain"`
	Message string `json:"error"`
}

// NewBatchSkillResult wraps primary content as a batch result.
func NewBatchSkillResult(content SkillContent) BatchResult {
	return BatchResult{Kind: BatchItemSkill, Skill: &content}
}

// NewBatchSubSkillResult wraps sub-skill content as a batch result.
func NewBatchSubSkillResult(content SubSkillContent) BatchResult {
	return BatchResult{Kind: BatchItemSubSkill, SubSkill: &content}
}

// NewBatchErrorResult wraps a per-item failure as a batch result.
func NewBatchErrorResult(domain, message string) BatchResult {
	return BatchResult{Kind: BatchItemError, Error: &BatchError{Domain: domain, Message: message}}
}

// IsError reports whether the item failed to resolve.
func (r *BatchResult) IsError() bool {
	return r.Kind == BatchItemError
}
