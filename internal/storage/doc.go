// Package storage persists documentation pages and their embedded sections.
//
// # Database Schema
//
// Tables:
//   - pages: one row per source document (logical path, checksum, meta JSON)
//   - page_sections: ordered heading-delimited fragments with token counts
//     and little-endian float32 embedding blobs
//
// Deleting a page cascades to its sections. A page whose checksum is NULL
// has not been fully indexed at its current content; the synchronizer sets
// the checksum only after the last section is written.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("docs.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	id, err := store.UpsertDocument(ctx, "/guides/auth", nil, meta)
//	err = store.InsertSection(ctx, &types.Section{DocumentID: id, Content: "# Auth"})
//	err = store.SetChecksum(ctx, id, fingerprint)
//
// # Migrations
//
// Schema changes are versioned with semantic versions and applied in order
// on open. The schema_version table records what has been applied.
//
// # Build Modes
//
// The default build uses the pure Go driver (modernc.org/sqlite). Building
// with -tags sqlite_cgo links github.com/mattn/go-sqlite3 instead.
//
// PostgreSQL with pgvector is available in the postgres subpackage.
package storage
