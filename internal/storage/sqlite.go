package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dshills/docsync/pkg/types"
)

// SQLiteStorage implements the Store interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ Store = (*SQLiteStorage)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Sections cascade with their page
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Document operations

func (s *SQLiteStorage) FindByPath(ctx context.Context, path string) (*types.Document, error) {
	query := `
		SELECT id, path, checksum, meta
		FROM pages
		WHERE path = ?
	`
	var doc types.Document
	var checksum, meta sql.NullString
	err := s.db.QueryRowContext(ctx, query, path).Scan(&doc.ID, &doc.Path, &checksum, &meta)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find page: %w", err)
	}
	if checksum.Valid {
		doc.Checksum = &checksum.String
	}
	if doc.Meta, err = decodeMeta(meta); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, path string, checksum *string, meta types.Meta) (int64, error) {
	doc := types.Document{Path: path}
	if err := doc.Validate(); err != nil {
		return 0, err
	}
	metaJSON, err := encodeMeta(meta)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO pages (path, checksum, meta, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum = excluded.checksum,
			meta = excluded.meta,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	var id int64
	if err := s.db.QueryRowContext(ctx, query, path, checksum, metaJSON, now, now).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert page: %w", err)
	}
	return id, nil
}

func (s *SQLiteStorage) SetChecksum(ctx context.Context, documentID int64, checksum string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE pages SET checksum = ?, updated_at = ? WHERE id = ?",
		checksum, time.Now(), documentID)
	if err != nil {
		return fmt.Errorf("failed to set checksum: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Section operations

func (s *SQLiteStorage) DeleteSections(ctx context.Context, documentID int64) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM page_sections WHERE page_id = ?", documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sections: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStorage) InsertSection(ctx context.Context, section *types.Section) error {
	if section.DocumentID <= 0 {
		return types.ErrInvalidDocumentID
	}
	if err := section.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO page_sections (page_id, sequence, heading, slug, content, token_count, embedding, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		section.DocumentID, section.Sequence, section.Heading, section.Slug, section.Content,
		section.TokenCount, serializeVector(section.Embedding), len(section.Embedding), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	section.ID = id
	return nil
}

func (s *SQLiteStorage) ListSections(ctx context.Context, documentID int64) ([]types.Section, error) {
	query := `
		SELECT id, page_id, sequence, heading, slug, content, token_count, embedding
		FROM page_sections
		WHERE page_id = ?
		ORDER BY sequence
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sections []types.Section
	for rows.Next() {
		var sec types.Section
		var blob []byte
		if err := rows.Scan(&sec.ID, &sec.DocumentID, &sec.Sequence, &sec.Heading, &sec.Slug,
			&sec.Content, &sec.TokenCount, &blob); err != nil {
			return nil, err
		}
		sec.Embedding = deserializeVector(blob)
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{Backend: "sqlite (" + BuildMode + ")"}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN checksum IS NULL THEN 1 ELSE 0 END), 0)
		FROM pages
	`).Scan(&status.Documents, &status.Pending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM page_sections").Scan(&status.Sections); err != nil {
		return nil, fmt.Errorf("failed to count sections: %w", err)
	}

	return status, nil
}

func encodeMeta(meta types.Meta) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode meta: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeMeta(raw sql.NullString) (types.Meta, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var meta types.Meta
	if err := json.Unmarshal([]byte(raw.String), &meta); err != nil {
		return nil, fmt.Errorf("failed to decode meta: %w", err)
	}
	return meta, nil
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}
