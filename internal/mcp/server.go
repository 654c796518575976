package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/docsync/internal/indexer"
)

const (
	// ServerName is the MCP server name
	ServerName = "docsync"
)

// ServerVersion is the version reported to MCP clients
var ServerVersion = "dev"

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	indexer *indexer.Indexer
	root    string
}

// NewServer creates an MCP server that syncs root through idx
func NewServer(idx *indexer.Indexer, root string) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:     mcpServer,
		indexer: idx,
		root:    root,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until stdin closes
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(syncDocsTool(), s.handleSyncDocs)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
