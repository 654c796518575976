package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Postgres driver
	"github.com/pgvector/pgvector-go"

	"github.com/dshills/docsync/internal/storage"
	"github.com/dshills/docsync/pkg/types"
)

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn, waits for the server to answer and applies
// pending migrations.
func Open(ctx context.Context, dsn string, attempts int, delay time.Duration) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := ping(ctx, db, attempts, delay); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db), nil
}

func ping(ctx context.Context, db *sql.DB, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		slog.WarnContext(ctx, "failed to ping db, retrying", "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("failed to ping db: %w", err)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FindByPath(ctx context.Context, path string) (*types.Document, error) {
	var doc types.Document
	var checksum sql.NullString
	var meta []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT id, path, checksum, meta FROM page WHERE path = $1", path,
	).Scan(&doc.ID, &doc.Path, &checksum, &meta)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find page: %w", err)
	}
	if checksum.Valid {
		doc.Checksum = &checksum.String
	}
	if len(meta) > 0 && string(meta) != "null" {
		if err := json.Unmarshal(meta, &doc.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode meta: %w", err)
		}
	}
	return &doc, nil
}

func (s *Store) UpsertDocument(ctx context.Context, path string, checksum *string, meta types.Meta) (int64, error) {
	doc := types.Document{Path: path}
	if err := doc.Validate(); err != nil {
		return 0, err
	}

	var metaJSON sql.NullString
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return 0, fmt.Errorf("failed to encode meta: %w", err)
		}
		metaJSON = sql.NullString{String: string(b), Valid: true}
	}

	query := "INSERT INTO page (path, checksum, meta) VALUES ($1, $2, $3) " +
		"ON CONFLICT (path) DO UPDATE SET checksum = EXCLUDED.checksum, meta = EXCLUDED.meta, updated_at = now() " +
		"RETURNING id"
	var id int64
	if err := s.db.QueryRowContext(ctx, query, path, checksum, metaJSON).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert page: %w", err)
	}
	return id, nil
}

func (s *Store) SetChecksum(ctx context.Context, documentID int64, checksum string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE page SET checksum = $1, updated_at = now() WHERE id = $2", checksum, documentID)
	if err != nil {
		return fmt.Errorf("failed to set checksum: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSections(ctx context.Context, documentID int64) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM page_section WHERE page_id = $1", documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sections: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) InsertSection(ctx context.Context, section *types.Section) error {
	if section.DocumentID <= 0 {
		return types.ErrInvalidDocumentID
	}
	if err := section.Validate(); err != nil {
		return err
	}

	var embedding *pgvector.Vector
	if len(section.Embedding) > 0 {
		v := pgvector.NewVector(section.Embedding)
		embedding = &v
	}

	query := "INSERT INTO page_section (page_id, sequence, heading, slug, content, token_count, embedding) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id"
	err := s.db.QueryRowContext(ctx, query,
		section.DocumentID, section.Sequence, section.Heading, section.Slug,
		section.Content, section.TokenCount, embedding,
	).Scan(&section.ID)
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}
	return nil
}

func (s *Store) ListSections(ctx context.Context, documentID int64) ([]types.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, page_id, sequence, heading, slug, content, token_count, embedding "+
			"FROM page_section WHERE page_id = $1 ORDER BY sequence", documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sections []types.Section
	for rows.Next() {
		var sec types.Section
		var embedding *pgvector.Vector
		if err := rows.Scan(&sec.ID, &sec.DocumentID, &sec.Sequence, &sec.Heading, &sec.Slug,
			&sec.Content, &sec.TokenCount, &embedding); err != nil {
			return nil, err
		}
		if embedding != nil {
			sec.Embedding = embedding.Slice()
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *Store) GetStatus(ctx context.Context) (*storage.Status, error) {
	status := &storage.Status{Backend: "postgres"}
	err := s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM page), "+
			"(SELECT COUNT(*) FROM page WHERE checksum IS NULL), "+
			"(SELECT COUNT(*) FROM page_section)",
	).Scan(&status.Documents, &status.Pending, &status.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	return status, nil
}
