// Package validation checks an indexed skill tree for structural
// problems beyond what manifest loading already enforces: missing
// primary instruction files, dangling sub-skill references, and
// quality warnings such as empty descriptions.
package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/logger"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

// ValidateAll inspects every indexed skill plus the errors collected at
// load time. Errors make the result invalid; warnings do not.
func ValidateAll(ctx context.Context, store *index.Store) skills.ValidationResult {
	result := skills.ValidationResult{Valid: true}
	snapshot := store.SkillIndex()

	for _, loadErr := range snapshot.ValidationErrors {
		result.AddError(loadErr)
	}

	for i := range snapshot.Skills {
		meta := &snapshot.Skills[i]
		result.SkillsChecked++
		validateSkill(store.SkillsDir(), meta, &result)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skills":   result.SkillsChecked,
		"errors":   len(result.Errors),
		"warnings": len(result.Warnings),
	}).Debug("validation complete")

	return result
}

func validateSkill(skillsDir string, meta *skills.SkillMeta, result *skills.ValidationResult) {
	skillDir := filepath.Join(skillsDir, meta.Name)

	primary := filepath.Join(skillDir, index.SkillFileName)
	if _, err := os.Stat(primary); err != nil {
		result.AddError(fmt.Sprintf("%s: missing %s", meta.Name, index.SkillFileName))
	}

	if meta.Description == "" {
		result.AddWarning(fmt.Sprintf("%s: empty description", meta.Name))
	}
	if len(meta.Tags) == 0 {
		result.AddWarning(fmt.Sprintf("%s: no tags", meta.Name))
	}

	for _, sub := range meta.SubSkills {
		if _, err := index.ResolveSubSkillPath(skillDir, sub.File); err != nil {
			result.AddError(fmt.Sprintf("%s: sub-skill %q: %v", meta.Name, sub.Name, err))
		}
		if len(sub.Triggers) == 0 {
			result.AddWarning(fmt.Sprintf("%s: sub-skill %q has no triggers", meta.Name, sub.Name))
		}
	}
}

// AsError collapses a validation result into a single aggregated error,
// or nil when the result is valid. Used by the CLI to pick an exit code.
func AsError(result skills.ValidationResult) error {
	if result.Valid {
		return nil
	}
	var merr *multierror.Error
	for _, msg := range result.Errors {
		merr = multierror.Append(merr, fmt.Errorf("%s", msg))
	}
	return merr.ErrorOrNil()
}
