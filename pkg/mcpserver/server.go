// Package mcpserver exposes the skill index over the Model Context
// Protocol. It registers one tool per operation on a stdio server; all
// business logic lives in pkg/index, pkg/search, and pkg/validation,
// this package only adapts requests and serializes responses.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/search"
	"github.com/skillstack/skillmcp/pkg/stats"
	"github.com/skillstack/skillmcp/pkg/version"
)

// Server bundles the index store with its search engine and usage
// collector behind the MCP tool surface.
type Server struct {
	store     *index.Store
	engine    *search.Engine
	collector *stats.Collector
	mcp       *server.MCPServer
}

// New creates the MCP server and registers every tool.
func New(store *index.Store, engine *search.Engine, collector *stats.Collector) *Server {
	s := &Server{
		store:     store,
		engine:    engine,
		collector: collector,
	}

	s.mcp = server.NewMCPServer(
		"skillmcp",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)
	s.registerTools()
	return s
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects. Logging must go to stderr while this runs.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.ServeStdio(s.mcp, server.WithStdioContextFunc(
		func(context.Context) context.Context { return ctx },
	))
}

// MCPServer exposes the underlying server, used in tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func serverInstructions() string {
	return `This server indexes a local library of skills: reusable instruction
documents organized as directories with a manifest, a primary SKILL.md, and
optional sub-skill files.

Typical workflow:
1. Call list_skills to see what is available.
2. Use search_skills (metadata) or search_content (full text) to find
   relevant skills for a task.
3. Load documents with get_skill, get_sub_skill, or get_skills_batch.

The index follows filesystem changes automatically; call reload_index only
when you suspect it is stale. validate_skills reports structural problems
in the skill library, and get_stats reports usage counters.`
}
