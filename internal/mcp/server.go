package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes document search and question
// answering tools over stdio.
type Server struct {
	store  *vectordb.Store
	engine *answer.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(store *vectordb.Store, engine *answer.Engine) *Server {
	s := &Server{
		store:  store,
		engine: engine,
	}

	s.mcp = server.NewMCPServer(
		"ragchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(indexStatusTool, s.handleIndexStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
