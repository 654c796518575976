package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// syncDocsTool returns the tool definition for sync_docs
func syncDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "sync_docs",
		Description: "Sync the documentation tree into the search index, re-embedding only changed documents",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"refresh": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, reprocess every document regardless of its stored checksum",
					"default":     false,
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report indexed document and section counts, and documents pending reprocessing",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
