package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/docketdive/docketdive/internal/chat"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes case-law research tools.
type Server struct {
	pipeline *chat.Pipeline
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(pipeline *chat.Pipeline) *Server {
	s := &Server{pipeline: pipeline}

	s.mcp = server.NewMCPServer(
		"docketdive",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchCaselawTool, s.handleSearchCaselaw)
	s.mcp.AddTool(askDocketdiveTool, s.handleAskDocketdive)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
