package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skillstack/skillmcp/pkg/types/skills"
)

const (
	// MetaFileName is the manifest file inside every skill directory.
	MetaFileName = "_meta.json"
	// SkillFileName is the primary document inside every skill directory.
	SkillFileName = "SKILL.md"
	// ReferencesDirName holds optional supplementary markdown documents.
	ReferencesDirName = "references"

	maxNameLength = 50
)

// One char, or lowercase-alnum bounded by lowercase-alnum with internal hyphens.
var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// LoadMeta reads and parses a _meta.json manifest.
func LoadMeta(path string) (skills.SkillMeta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return skills.SkillMeta{}, notFoundf("manifest not found: %s", path)
		}
		return skills.SkillMeta{}, readErr(err, "failed to read %s", path)
	}

	var meta skills.SkillMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return skills.SkillMeta{}, parseErr(err, "failed to parse %s", path)
	}
	return meta, nil
}

// ValidateMeta checks a manifest against the schema and returns every
// problem found. Validation errors are collected, not fatal: a flagged
// manifest still indexes.
func ValidateMeta(meta *skills.SkillMeta) []string {
	var errs []string

	if meta.Name == "" {
		errs = append(errs, "name: cannot be empty")
	} else {
		if !nameRe.MatchString(meta.Name) {
			errs = append(errs, fmt.Sprintf("name: must be lowercase alphanumeric with hyphens, got '%s'", meta.Name))
		}
		if len(meta.Name) > maxNameLength {
			errs = append(errs, fmt.Sprintf("name: must be %d characters or less, got %d", maxNameLength, len(meta.Name)))
		}
	}

	if meta.Description == "" {
		errs = append(errs, "description: cannot be empty")
	}

	seen := make(map[string]bool)
	for i, sub := range meta.SubSkills {
		if sub.Name == "" {
			errs = append(errs, fmt.Sprintf("sub_skills[%d].name: cannot be empty", i))
		}
		if sub.File == "" {
			errs = append(errs, fmt.Sprintf("sub_skills[%d].file: cannot be empty", i))
		} else if !strings.HasSuffix(sub.File, ".md") {
			errs = append(errs, fmt.Sprintf("sub_skills[%d].file: must end with .md, got '%s'", i, sub.File))
		}
		if sub.Name != "" && seen[sub.Name] {
			errs = append(errs, fmt.Sprintf("sub_skills: duplicate name '%s'", sub.Name))
		}
		seen[sub.Name] = true
	}

	return errs
}

// LoadSkill loads and validates one skill directory's manifest. Schema
// problems come back in validationErrs alongside the loaded manifest;
// path-escape attempts in sub-skill files are fatal and never indexed.
func LoadSkill(skillDir string) (meta skills.SkillMeta, validationErrs []string, err error) {
	meta, err = LoadMeta(filepath.Join(skillDir, MetaFileName))
	if err != nil {
		return skills.SkillMeta{}, nil, err
	}

	for _, sub := range meta.SubSkills {
		if err := checkPathContainment(sub.File); err != nil {
			return skills.SkillMeta{}, nil, err
		}
	}

	return meta, ValidateMeta(&meta), nil
}

// checkPathContainment rejects manifest paths that could point outside
// the skill directory without touching the filesystem. Only ".." path
// segments count as traversal; names like "notes..md" are legitimate.
func checkPathContainment(file string) error {
	if strings.HasPrefix(file, "/") || strings.HasPrefix(file, "\\") {
		return validationErrf("sub-skill file path cannot be absolute: %s", file)
	}
	// Windows drive-letter prefix.
	if len(file) >= 2 && file[1] == ':' {
		return validationErrf("sub-skill file path cannot be absolute: %s", file)
	}
	for _, segment := range strings.Split(strings.ReplaceAll(file, "\\", "/"), "/") {
		if segment == ".." {
			return validationErrf("sub-skill file path escapes skill directory: %s", file)
		}
	}
	return nil
}

// ResolveSubSkillPath validates that a manifest-referenced file resolves
// inside the skill directory and returns its canonical path. Symlinks are
// resolved before the containment check, so a link pointing outside the
// skill directory is rejected the same as a literal traversal.
func ResolveSubSkillPath(skillDir, file string) (string, error) {
	if err := checkPathContainment(file); err != nil {
		return "", err
	}

	filePath := filepath.Join(skillDir, file)
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return "", notFoundf("sub-skill file not found: %s", filePath)
		}
		return "", readErr(err, "failed to stat %s", filePath)
	}

	canonicalPath, err := filepath.EvalSymlinks(filePath)
	if err != nil {
		return "", readErr(err, "failed to resolve path %s", filePath)
	}
	canonicalDir, err := filepath.EvalSymlinks(skillDir)
	if err != nil {
		return "", readErr(err, "failed to resolve skill directory %s", skillDir)
	}

	rel, err := filepath.Rel(canonicalDir, canonicalPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", validationErrf("sub-skill file path escapes skill directory: %s", file)
	}

	return canonicalPath, nil
}

// buildSkillEntries reads every document belonging to one skill: the
// primary SKILL.md, each sub-skill file, and all markdown under
// references/, recursively. Unreadable documents are skipped; the skill
// still indexes with whatever could be read.
func buildSkillEntries(skillDir string, meta *skills.SkillMeta) []skills.ContentEntry {
	var entries []skills.ContentEntry

	if raw, err := os.ReadFile(filepath.Join(skillDir, SkillFileName)); err == nil {
		entries = append(entries, skills.NewContentEntry(meta.Name, "", SkillFileName, string(raw)))
	}

	for _, sub := range meta.SubSkills {
		raw, err := os.ReadFile(filepath.Join(skillDir, sub.File))
		if err != nil {
			continue
		}
		entries = append(entries, skills.NewContentEntry(meta.Name, sub.Name, sub.File, string(raw)))
	}

	entries = append(entries, buildReferenceEntries(skillDir, meta.Name)...)

	return entries
}

// buildReferenceEntries indexes references/**/*.md and *.markdown.
func buildReferenceEntries(skillDir, domain string) []skills.ContentEntry {
	refsDir := filepath.Join(skillDir, ReferencesDirName)
	if info, err := os.Stat(refsDir); err != nil || !info.IsDir() {
		return nil
	}

	pattern := filepath.Join(refsDir, "**", "*.{md,markdown}")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil
	}

	var entries []skills.ContentEntry
	for _, match := range matches {
		if info, err := os.Stat(match); err != nil || info.IsDir() {
			continue
		}
		raw, err := os.ReadFile(match)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(skillDir, match)
		if err != nil {
			rel = match
		}
		entries = append(entries, skills.NewContentEntry(domain, "", filepath.ToSlash(rel), string(raw)))
	}
	return entries
}
