package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/telemetry"
	"github.com/skillstack/skillmcp/pkg/types/skills"
	"github.com/skillstack/skillmcp/pkg/validation"
)

// maxRequestBytes bounds request bodies: the content limit plus headroom
// for the JSON envelope.
const maxRequestBytes = maxContentBytes + 64*1024

// handleListSkills handles GET /api/skills.
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.SkillIndex()
	s.writeJSONResponse(w, map[string]any{
		"skills":            skills.NewSkillList(snapshot.Skills),
		"count":             len(snapshot.Skills),
		"validation_errors": snapshot.ValidationErrors,
		"last_updated":      snapshot.LastUpdated,
	})
}

// handleGetSkill handles GET /api/skills/{name}.
func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	meta := s.store.SkillMeta(name)
	if meta == nil {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill not found: %s", name), nil)
		return
	}

	content, err := s.store.ReadSkillContent(ctx, name)
	if err != nil {
		if index.IsNotFound(err) {
			s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill not found: %s", name), err)
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to read skill", err)
		return
	}

	s.collector.RecordSkillLoad(name)
	s.writeJSONResponse(w, map[string]any{
		"meta":    meta,
		"content": content.Content,
	})
}

// handleCreateSkill handles POST /api/skills. It writes the manifest and
// primary document to disk, then folds the new skill into the index.
func (s *Server) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSkillRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if s.store.SkillExists(req.Name) {
		s.writeErrorResponse(w, http.StatusConflict, fmt.Sprintf("skill already exists: %s", req.Name), nil)
		return
	}

	err := telemetry.WithSpan(ctx, "api.create_skill", func(context.Context) error {
		return s.writeSkill(req.Name, skills.SkillMeta{
			Name:        req.Name,
			Description: req.Description,
			Tags:        req.Tags,
		}, req.Content)
	}, attribute.String("skill", req.Name))
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to write skill", err)
		return
	}

	if err := s.store.UpdateSkill(ctx, req.Name); err != nil {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "skill written but failed validation", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	s.writeJSONResponse(w, map[string]any{"status": "created", "name": req.Name})
}

// handleUpdateSkill handles PUT /api/skills/{name}. Only the provided
// fields change; the rest of the manifest is preserved.
func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	meta := s.store.SkillMeta(name)
	if meta == nil {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill not found: %s", name), nil)
		return
	}

	var req UpdateSkillRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if req.Description != nil {
		meta.Description = *req.Description
	}
	if req.Tags != nil {
		meta.Tags = *req.Tags
	}

	err := telemetry.WithSpan(ctx, "api.update_skill", func(context.Context) error {
		if err := s.writeManifest(name, *meta); err != nil {
			return err
		}
		if req.Content != nil {
			return s.writePrimaryDocument(name, *req.Content)
		}
		return nil
	}, attribute.String("skill", name))
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to write skill", err)
		return
	}

	if err := s.store.UpdateSkill(ctx, name); err != nil {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "skill written but failed validation", err)
		return
	}

	s.writeJSONResponse(w, map[string]any{"status": "updated", "name": name})
}

// handleDeleteSkill handles DELETE /api/skills/{name}.
func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	if err := validateSkillName(name); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !s.store.SkillExists(name) {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill not found: %s", name), nil)
		return
	}

	err := telemetry.WithSpan(ctx, "api.delete_skill", func(context.Context) error {
		return os.RemoveAll(filepath.Join(s.store.SkillsDir(), name))
	}, attribute.String("skill", name))
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to delete skill", err)
		return
	}

	s.store.RemoveSkill(name)
	s.writeJSONResponse(w, map[string]any{"status": "deleted", "name": name})
}

// handleSearch handles GET /api/search. The "type" parameter selects
// metadata search, content search, or both.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	q := query.Get("q")
	if q == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "q parameter is required", nil)
		return
	}

	opts := skills.SearchOptions{}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			opts.Limit = limit
		}
	}
	if minScoreStr := query.Get("min_score"); minScoreStr != "" {
		if minScore, err := strconv.ParseFloat(minScoreStr, 64); err == nil {
			opts.MinScore = minScore
		}
	}
	if domains := query.Get("domains"); domains != "" {
		opts.Domains = strings.Split(domains, ",")
	}

	var results skills.SearchResults
	switch query.Get("type") {
	case "", "skills":
		results = s.engine.SearchSkills(ctx, q, opts)
	case "content":
		results = s.engine.SearchContent(ctx, q, opts)
	case "all":
		results = s.engine.SearchAll(ctx, q, opts)
	default:
		s.writeErrorResponse(w, http.StatusBadRequest, "type must be one of: skills, content, all", nil)
		return
	}

	s.collector.RecordSearch(ctx, q, results.TotalMatches)
	s.writeJSONResponse(w, results)
}

// handleReload handles POST /api/reload.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.store.Rebuild(ctx); err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to rebuild index", err)
		return
	}

	snapshot := s.store.SkillIndex()
	s.writeJSONResponse(w, map[string]any{
		"status": "ok",
		"skills": len(snapshot.Skills),
	})
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, s.collector.Snapshot(r.Context()))
}

// handleValidate handles GET /api/validate.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, validation.ValidateAll(r.Context(), s.store))
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.SkillIndex()
	s.writeJSONResponse(w, map[string]any{
		"status": "ok",
		"skills": len(snapshot.Skills),
	})
}

// writeSkill creates a skill directory with its manifest and primary
// document.
func (s *Server) writeSkill(name string, meta skills.SkillMeta, content string) error {
	dir := filepath.Join(s.store.SkillsDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := s.writeManifest(name, meta); err != nil {
		return err
	}
	return s.writePrimaryDocument(name, content)
}

func (s *Server) writeManifest(name string, meta skills.SkillMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.store.SkillsDir(), name, index.MetaFileName)
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (s *Server) writePrimaryDocument(name, content string) error {
	path := filepath.Join(s.store.SkillsDir(), name, index.SkillFileName)
	return os.WriteFile(path, []byte(content), 0o644)
}
