// Package mcp exposes docsync over the Model Context Protocol (MCP).
//
// The server speaks JSON-RPC 2.0 over stdio and registers two tools:
//   - sync_docs: run a sync of the configured documentation root
//   - get_status: report what the index currently holds
//
// # Tool: sync_docs
//
//	Request:
//	{
//	  "name": "sync_docs",
//	  "arguments": {"refresh": false}
//	}
//
//	Response:
//	{
//	  "discovered": 120,
//	  "skipped": 117,
//	  "indexed": 2,
//	  "failed": 1,
//	  "sections_inserted": 9,
//	  "embedding_calls": 9,
//	  "failures": [{"path": "/guides/auth", "stage": "embed", "error": "..."}]
//	}
//
// Only the first five failures are listed; failure_count carries the total
// when more occurred. A failed document never fails the tool call.
//
// # Tool: get_status
//
//	Response:
//	{
//	  "backend": "sqlite (purego)",
//	  "documents": 120,
//	  "committed": 119,
//	  "pending": 1,
//	  "sections": 842,
//	  "syncing": false
//	}
//
// Pending documents have no checksum: either a previous sync failed part way
// through them or one is processing them now.
//
// # Errors
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  documentation root cannot be read
//	-32002  a sync is already running (in this process or, with a run lock,
//	        in another)
package mcp
