// Package index maintains the in-memory skill index: a metadata
// collection and a content-search collection that are always installed
// together, so readers observe either the previous complete state or the
// next one, never a mix. The index is rebuilt from the filesystem on
// every start; nothing is persisted.
package index

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skillstack/skillmcp/pkg/logger"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

// combinedIndex pairs the two collections that must be replaced together.
type combinedIndex struct {
	skillIndex   skills.SkillIndex
	contentIndex skills.ContentIndex
}

// Store owns the combined index behind a single reader-writer lock.
//
// Writers (Rebuild, UpdateSkill, RemoveSkill) compute their new
// collections outside the lock and take the write lock only to install
// the result. Readers copy under a brief read lock and score against the
// copy, so scoring never blocks writers.
//
// Rebuild and UpdateSkill are not ordered beyond mutual exclusion: when
// both run concurrently the last writer's installed state wins in full.
// An UpdateSkill that loses the race to a Rebuild started before the
// underlying disk change can be overwritten; the watcher's fallback
// rebuild recovers from this.
type Store struct {
	skillsDir string

	mu    sync.RWMutex
	index combinedIndex
}

// NewStore creates a store rooted at the given skills directory. The
// index starts empty; call Rebuild to populate it.
func NewStore(skillsDir string) *Store {
	return &Store{
		skillsDir: skillsDir,
		index: combinedIndex{
			skillIndex:   skills.SkillIndex{LastUpdated: time.Now().UTC()},
			contentIndex: skills.NewContentIndex(),
		},
	}
}

// SkillsDir returns the configured root directory.
func (s *Store) SkillsDir() string {
	return s.skillsDir
}

// Rebuild scans the whole tree and atomically replaces both collections.
// It fails only when the root directory itself is missing; individual
// skill problems are accumulated in the snapshot's error list.
func (s *Store) Rebuild(ctx context.Context) error {
	log := logger.G(ctx)
	log.WithField("skills_dir", s.skillsDir).Info("rebuilding skill index")

	skillIndex, err := s.buildSkillIndex()
	if err != nil {
		return err
	}
	contentIndex := s.buildContentIndex(&skillIndex)

	s.mu.Lock()
	s.index = combinedIndex{skillIndex: skillIndex, contentIndex: contentIndex}
	s.mu.Unlock()

	log.WithFields(map[string]any{
		"skills":          skillIndex.Len(),
		"content_entries": contentIndex.Len(),
		"errors":          len(skillIndex.ValidationErrors),
	}).Info("index rebuild complete")

	return nil
}

// UpdateSkill recomputes one skill's metadata and content entries and
// splices them into the index. A missing directory or manifest demotes
// to removal: that is a valid deletion race, not an error.
func (s *Store) UpdateSkill(ctx context.Context, name string) error {
	log := logger.G(ctx).WithField("skill", name)
	skillDir := filepath.Join(s.skillsDir, name)

	if info, err := os.Stat(skillDir); err != nil || !info.IsDir() {
		log.Debug("skill directory gone, removing from index")
		s.RemoveSkill(name)
		return nil
	}

	meta, validationErrs, err := LoadSkill(skillDir)
	if err != nil {
		if IsNotFound(err) {
			log.Debug("manifest gone, removing from index")
			s.RemoveSkill(name)
			return nil
		}
		if IsValidationError(err) {
			// Path-escape attempts are always rejected; drop the skill
			// rather than index a manifest that points outside its
			// directory.
			s.RemoveSkill(name)
			return err
		}
		return err
	}
	for _, verr := range validationErrs {
		log.WithField("error", verr).Debug("manifest validation error")
	}

	entries := buildSkillEntries(skillDir, &meta)

	s.mu.Lock()
	s.spliceLocked(name, &meta, entries)
	s.mu.Unlock()

	log.Debug("incrementally updated skill")
	return nil
}

// spliceLocked replaces one skill's contribution in both collections.
// Callers hold the write lock.
func (s *Store) spliceLocked(name string, meta *skills.SkillMeta, entries []skills.ContentEntry) {
	kept := s.index.skillIndex.Skills[:0]
	for _, existing := range s.index.skillIndex.Skills {
		if existing.Name != name {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, *meta)
	sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	s.index.skillIndex.Skills = kept
	s.index.skillIndex.LastUpdated = time.Now().UTC()

	for key, entry := range s.index.contentIndex.Entries {
		if entry.Domain == name {
			delete(s.index.contentIndex.Entries, key)
		}
	}
	for _, entry := range entries {
		s.index.contentIndex.Insert(entry)
	}
}

// RemoveSkill deletes the skill's metadata and every content entry whose
// domain matches. Removing an absent skill is a no-op.
func (s *Store) RemoveSkill(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.index.skillIndex.Skills[:0]
	for _, existing := range s.index.skillIndex.Skills {
		if existing.Name != name {
			kept = append(kept, existing)
		}
	}
	s.index.skillIndex.Skills = kept
	s.index.skillIndex.LastUpdated = time.Now().UTC()

	for key, entry := range s.index.contentIndex.Entries {
		if entry.Domain == name {
			delete(s.index.contentIndex.Entries, key)
		}
	}
	s.index.contentIndex.LastUpdated = time.Now().UTC()
}

// SkillIndex returns an independent copy of the metadata collection.
func (s *Store) SkillIndex() skills.SkillIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.skillIndex.Clone()
}

// ContentIndex returns an independent copy of the content collection.
func (s *Store) ContentIndex() skills.ContentIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.contentIndex.Clone()
}

// SkillMeta returns a copy of one skill's metadata, or nil.
func (s *Store) SkillMeta(name string) *skills.SkillMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if meta := s.index.skillIndex.Find(name); meta != nil {
		clone := meta.Clone()
		return &clone
	}
	return nil
}

// SkillExists reports whether the skill's directory exists on disk.
func (s *Store) SkillExists(name string) bool {
	info, err := os.Stat(filepath.Join(s.skillsDir, name))
	return err == nil && info.IsDir()
}

// HasReferences reports whether the skill has a references directory.
func (s *Store) HasReferences(name string) bool {
	info, err := os.Stat(filepath.Join(s.skillsDir, name, ReferencesDirName))
	return err == nil && info.IsDir()
}

// SkillFromPath maps a filesystem path to the owning skill name: the
// first path component under the root, excluding hidden and underscore
// directories. ok is false for paths outside any skill subtree.
func (s *Store) SkillFromPath(path string) (name string, ok bool) {
	rel, err := filepath.Rel(s.skillsDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}

	first := strings.Split(filepath.ToSlash(rel), "/")[0]
	if first == "" || strings.HasPrefix(first, ".") || strings.HasPrefix(first, "_") {
		return "", false
	}
	return first, true
}

// ReadSkillContent reads the primary document straight from disk plus the
// sub-skill name list and reference-presence flag. A skill indexed
// without a SKILL.md still fails here with not-found.
func (s *Store) ReadSkillContent(ctx context.Context, name string) (skills.SkillContent, error) {
	skillMD := filepath.Join(s.skillsDir, name, SkillFileName)

	raw, err := os.ReadFile(skillMD)
	if err != nil {
		if os.IsNotExist(err) {
			return skills.SkillContent{}, notFoundf("%s not found for '%s'", SkillFileName, name)
		}
		return skills.SkillContent{}, readErr(err, "failed to read %s", skillMD)
	}

	var subSkills []string
	if meta := s.SkillMeta(name); meta != nil {
		subSkills = meta.SubSkillNames()
	}

	logger.G(ctx).WithField("skill", name).Debug("read skill content")

	return skills.SkillContent{
		Name:          name,
		Content:       string(raw),
		SubSkills:     subSkills,
		HasReferences: s.HasReferences(name),
	}, nil
}

// ReadSubSkillContent resolves a sub-skill through the manifest and reads
// its document. The file path is containment-checked on every read, not
// just at index time.
func (s *Store) ReadSubSkillContent(ctx context.Context, domain, subSkill string) (skills.SubSkillContent, error) {
	meta := s.SkillMeta(domain)
	if meta == nil {
		return skills.SubSkillContent{}, notFoundf("skill '%s' not found", domain)
	}

	sub := meta.FindSubSkill(subSkill)
	if sub == nil {
		return skills.SubSkillContent{}, notFoundf("sub-skill '%s' not found in '%s'", subSkill, domain)
	}

	filePath, err := ResolveSubSkillPath(filepath.Join(s.skillsDir, domain), sub.File)
	if err != nil {
		return skills.SubSkillContent{}, err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return skills.SubSkillContent{}, readErr(err, "failed to read %s", filePath)
	}

	logger.G(ctx).WithFields(map[string]any{"skill": domain, "sub_skill": subSkill}).Debug("read sub-skill content")

	return skills.SubSkillContent{
		Domain:   domain,
		SubSkill: subSkill,
		Content:  string(raw),
	}, nil
}

// buildSkillIndex scans every candidate subdirectory and loads manifests.
// Per-skill failures are downgraded to accumulated errors so one bad
// skill never blocks the rest of the tree.
func (s *Store) buildSkillIndex() (skills.SkillIndex, error) {
	if _, err := os.Stat(s.skillsDir); err != nil {
		return skills.SkillIndex{}, notFoundf("skills directory not found: %s", s.skillsDir)
	}

	dirEntries, err := os.ReadDir(s.skillsDir)
	if err != nil {
		return skills.SkillIndex{}, readErr(err, "failed to read skills directory %s", s.skillsDir)
	}

	var metas []skills.SkillMeta
	var errs []string

	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}

		skillDir := filepath.Join(s.skillsDir, name)
		if _, err := os.Stat(filepath.Join(skillDir, MetaFileName)); err != nil {
			errs = append(errs, name+": missing "+MetaFileName)
			continue
		}

		meta, validationErrs, err := LoadSkill(skillDir)
		if err != nil {
			errs = append(errs, name+": "+err.Error())
			continue
		}
		for _, verr := range validationErrs {
			errs = append(errs, name+": "+verr)
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })

	return skills.SkillIndex{
		Skills:           metas,
		ValidationErrors: errs,
		LastUpdated:      time.Now().UTC(),
	}, nil
}

// buildContentIndex reads every document for the already-loaded skills.
func (s *Store) buildContentIndex(skillIndex *skills.SkillIndex) skills.ContentIndex {
	contentIndex := skills.NewContentIndex()
	for i := range skillIndex.Skills {
		meta := &skillIndex.Skills[i]
		skillDir := filepath.Join(s.skillsDir, meta.Name)
		for _, entry := range buildSkillEntries(skillDir, meta) {
			contentIndex.Insert(entry)
		}
	}
	return contentIndex
}
