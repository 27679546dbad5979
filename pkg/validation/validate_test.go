package validation

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

func writeSkill(t *testing.T, root string, meta skills.SkillMeta, withPrimary bool) {
	t.Helper()
	dir := filepath.Join(root, meta.Name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, index.MetaFileName), data, 0o644))
	if withPrimary {
		require.NoError(t, os.WriteFile(filepath.Join(dir, index.SkillFileName), []byte("# "+meta.Name), 0o644))
	}
}

func newStore(t *testing.T, root string) *index.Store {
	t.Helper()
	store := index.NewStore(root)
	require.NoError(t, store.Rebuild(context.Background()))
	return store
}

func TestValidateAllCleanLibrary(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, skills.SkillMeta{Name: "frontend", Description: "f", Tags: []string{"web"}}, true)

	result := ValidateAll(context.Background(), newStore(t, root))
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.SkillsChecked)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.NoError(t, AsError(result))
}

func TestValidateAllMissingPrimaryDocument(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, skills.SkillMeta{Name: "incomplete", Description: "d", Tags: []string{"x"}}, false)

	result := ValidateAll(context.Background(), newStore(t, root))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], index.SkillFileName)
	assert.Error(t, AsError(result))
}

func TestValidateAllDanglingSubSkill(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, skills.SkillMeta{
		Name:        "frontend",
		Description: "f",
		Tags:        []string{"web"},
		SubSkills:   []skills.SubSkillMeta{{Name: "react", File: "react.md", Triggers: []string{"hooks"}}},
	}, true)

	result := ValidateAll(context.Background(), newStore(t, root))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "react")
}

func TestValidateAllQualityWarnings(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, skills.SkillMeta{
		Name:        "bare",
		Description: "d",
		SubSkills:   []skills.SubSkillMeta{{Name: "sub", File: "sub.md"}},
	}, true)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bare", "sub.md"), []byte("# Sub"), 0o644))

	result := ValidateAll(context.Background(), newStore(t, root))
	assert.True(t, result.Valid)
	// No tags, and the sub-skill has no triggers.
	assert.Len(t, result.Warnings, 2)
}

func TestValidateAllCarriesIndexErrors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nometa"), 0o755))

	result := ValidateAll(context.Background(), newStore(t, root))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], index.MetaFileName)
}

func TestAsErrorAggregates(t *testing.T) {
	result := skills.ValidationResult{}
	result.AddError("first")
	result.AddError("second")

	err := AsError(result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}
