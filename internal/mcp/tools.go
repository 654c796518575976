package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docsync/internal/indexer"
	"github.com/dshills/docsync/internal/runlock"
	"github.com/dshills/docsync/internal/walker"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeRootNotFound   = -32001 // Documentation root cannot be traversed
	ErrorCodeSyncInProgress = -32002 // Another sync is already running
)

// maxReportedFailures caps the failures listed in a sync_docs response
const maxReportedFailures = 5

// handleSyncDocs handles the sync_docs tool invocation
func (s *Server) handleSyncDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := map[string]interface{}{}
	if request.Params.Arguments != nil {
		var ok bool
		args, ok = request.Params.Arguments.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
		}
	}

	refresh := getBoolDefault(args, "refresh", false)

	stats, err := s.indexer.Sync(ctx, s.root, &indexer.SyncConfig{Refresh: refresh})
	switch {
	case errors.Is(err, indexer.ErrSyncInProgress), errors.Is(err, runlock.ErrLockHeld):
		return nil, newMCPError(ErrorCodeSyncInProgress, "sync already in progress", nil)
	case errors.Is(err, walker.ErrTraversal):
		return nil, newMCPError(ErrorCodeRootNotFound, "documentation root cannot be read", map[string]interface{}{
			"error": err.Error(),
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "sync failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run_id":            stats.RunID,
		"discovered":        stats.Discovered,
		"skipped":           stats.Skipped,
		"indexed":           stats.Indexed,
		"failed":            stats.Failed,
		"sections_deleted":  stats.SectionsDeleted,
		"sections_inserted": stats.SectionsInserted,
		"embedding_calls":   stats.EmbeddingCalls,
		"tokens_used":       stats.TokensUsed,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.Failures) > 0 {
		failures := make([]map[string]interface{}, 0, maxReportedFailures)
		for _, f := range stats.Failures {
			if len(failures) == maxReportedFailures {
				break
			}
			failures = append(failures, map[string]interface{}{
				"path":  f.Path,
				"stage": string(f.Stage),
				"error": f.Err.Error(),
			})
		}
		response["failures"] = failures
		if len(stats.Failures) > maxReportedFailures {
			response["failure_count"] = len(stats.Failures)
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.indexer.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"backend":   status.Backend,
		"documents": status.Documents,
		"committed": status.Committed(),
		"pending":   status.Pending,
		"sections":  status.Sections,
		"syncing":   s.indexer.Running(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}
