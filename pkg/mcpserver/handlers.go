package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/types/skills"
	"github.com/skillstack/skillmcp/pkg/validation"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_skills",
		mcp.WithDescription("List every indexed skill with its metadata: name, description, tags, and sub-skills."),
	), s.handleListSkills)

	s.mcp.AddTool(mcp.NewTool("get_skill",
		mcp.WithDescription("Fetch the primary SKILL.md content of a skill by name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Skill name")),
	), s.handleGetSkill)

	s.mcp.AddTool(mcp.NewTool("get_sub_skill",
		mcp.WithDescription("Fetch the content of one sub-skill document."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Parent skill name")),
		mcp.WithString("sub_skill", mcp.Required(), mcp.Description("Sub-skill name")),
	), s.handleGetSubSkill)

	s.mcp.AddTool(mcp.NewTool("get_skills_batch",
		mcp.WithDescription("Fetch several documents in one call. Each item resolves independently; failures are reported per item."),
		mcp.WithArray("items", mcp.Required(), mcp.Description("Documents to fetch"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"domain":    map[string]any{"type": "string", "description": "Skill name"},
					"sub_skill": map[string]any{"type": "string", "description": "Sub-skill name; omit for the primary document"},
				},
				"required": []string{"domain"},
			}),
		),
	), s.handleGetSkillsBatch)

	s.mcp.AddTool(mcp.NewTool("search_skills",
		mcp.WithDescription("Search skill metadata: names, descriptions, tags, and triggers. Returns ranked results."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, default 10, capped at 100")),
		mcp.WithNumber("min_score", mcp.Description("Drop results scoring below this value")),
		mcp.WithArray("match_types", mcp.Description("Restrict to field categories: name, description, tags, triggers"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("domains", mcp.Description("Restrict to these skill names"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.handleSearchSkills)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search over skill document bodies. Returns ranked results with snippets."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, default 10, capped at 100")),
		mcp.WithNumber("min_score", mcp.Description("Drop results scoring below this value")),
		mcp.WithArray("domains", mcp.Description("Restrict to these skill names"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.handleSearchContent)

	s.mcp.AddTool(mcp.NewTool("reload_index",
		mcp.WithDescription("Rebuild the index from disk. Only needed when the automatic file watching missed a change."),
	), s.handleReloadIndex)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Report usage counters: tool calls, skill loads, recent searches, uptime, and memory."),
	), s.handleGetStats)

	s.mcp.AddTool(mcp.NewTool("validate_skills",
		mcp.WithDescription("Check every skill for structural problems: missing files, dangling sub-skill references, manifest errors."),
	), s.handleValidateSkills)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal result")
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("list_skills")

	snapshot := s.store.SkillIndex()
	return jsonResult(map[string]any{
		"skills":            skills.NewSkillList(snapshot.Skills),
		"count":             len(snapshot.Skills),
		"validation_errors": snapshot.ValidationErrors,
		"last_updated":      snapshot.LastUpdated,
	})
}

func (s *Server) handleGetSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("get_skill")

	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := s.store.ReadSkillContent(ctx, name)
	if err != nil {
		if index.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("skill not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.collector.RecordSkillLoad(name)
	return jsonResult(content)
}

func (s *Server) handleGetSubSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("get_sub_skill")

	domain, err := req.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subSkill, err := req.RequireString("sub_skill")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := s.store.ReadSubSkillContent(ctx, domain, subSkill)
	if err != nil {
		if index.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("sub-skill not found: %s:%s", domain, subSkill)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.collector.RecordSkillLoad(domain)
	return jsonResult(content)
}

func (s *Server) handleGetSkillsBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("get_skills_batch")

	var args struct {
		Items []skills.BatchRequest `json:"items"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Items) == 0 {
		return mcp.NewToolResultError("items must not be empty"), nil
	}

	results := make([]skills.BatchResult, 0, len(args.Items))
	for _, item := range args.Items {
		results = append(results, s.resolveBatchItem(ctx, item))
	}
	return jsonResult(map[string]any{"items": results})
}

func (s *Server) resolveBatchItem(ctx context.Context, item skills.BatchRequest) skills.BatchResult {
	if item.Domain == "" {
		return skills.NewBatchErrorResult("", "domain must not be empty")
	}

	if item.SubSkill == "" {
		content, err := s.store.ReadSkillContent(ctx, item.Domain)
		if err != nil {
			return skills.NewBatchErrorResult(item.Domain, err.Error())
		}
		s.collector.RecordSkillLoad(item.Domain)
		return skills.NewBatchSkillResult(content)
	}

	content, err := s.store.ReadSubSkillContent(ctx, item.Domain, item.SubSkill)
	if err != nil {
		return skills.NewBatchErrorResult(item.Domain, err.Error())
	}
	s.collector.RecordSkillLoad(item.Domain)
	return skills.NewBatchSubSkillResult(content)
}

func (s *Server) handleSearchSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("search_skills")

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := searchOptionsFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := s.engine.SearchSkills(ctx, query, opts)
	s.collector.RecordSearch(ctx, query, results.TotalMatches)
	return jsonResult(results)
}

func (s *Server) handleSearchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("search_content")

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := searchOptionsFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := s.engine.SearchContent(ctx, query, opts)
	s.collector.RecordSearch(ctx, query, results.TotalMatches)
	return jsonResult(results)
}

func searchOptionsFromRequest(req mcp.CallToolRequest) (skills.SearchOptions, error) {
	opts := skills.SearchOptions{
		Limit:    req.GetInt("limit", 0),
		MinScore: req.GetFloat("min_score", 0),
		Domains:  req.GetStringSlice("domains", nil),
	}

	for _, raw := range req.GetStringSlice("match_types", nil) {
		mt := skills.MatchType(raw)
		switch mt {
		case skills.MatchName, skills.MatchDescription, skills.MatchTags, skills.MatchTriggers, skills.MatchContent:
			opts.MatchTypes = append(opts.MatchTypes, mt)
		default:
			return opts, fmt.Errorf("unknown match type: %s", raw)
		}
	}
	return opts, nil
}

func (s *Server) handleReloadIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("reload_index")

	if err := s.store.Rebuild(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snapshot := s.store.SkillIndex()
	return jsonResult(map[string]any{
		"status":            "ok",
		"skills":            len(snapshot.Skills),
		"validation_errors": len(snapshot.ValidationErrors),
	})
}

func (s *Server) handleGetStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("get_stats")
	return jsonResult(s.collector.Snapshot(ctx))
}

func (s *Server) handleValidateSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.collector.RecordToolCall("validate_skills")
	return jsonResult(validation.ValidateAll(ctx, s.store))
}
