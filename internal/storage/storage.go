package storage

import (
	"context"
	"errors"

	"github.com/dshills/docsync/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// Store persists documents and their sections. Implementations must keep
// sections retrievable in sequence order and must cascade section removal
// when a document's sections are deleted.
type Store interface {
	// FindByPath returns the document stored under path, or ErrNotFound.
	FindByPath(ctx context.Context, path string) (*types.Document, error)

	// DeleteSections removes every section of a document and returns how
	// many were removed.
	DeleteSections(ctx context.Context, documentID int64) (int, error)

	// UpsertDocument creates or updates the document keyed by path and
	// returns its id.
	UpsertDocument(ctx context.Context, path string, checksum *string, meta types.Meta) (int64, error)

	// InsertSection writes one section and sets its ID.
	InsertSection(ctx context.Context, section *types.Section) error

	// SetChecksum stores the commit marker of a document.
	SetChecksum(ctx context.Context, documentID int64, checksum string) error

	// ListSections returns the sections of a document ordered by sequence.
	ListSections(ctx context.Context, documentID int64) ([]types.Section, error)

	// GetStatus summarizes the index.
	GetStatus(ctx context.Context) (*Status, error)

	Close() error
}

// Status contains statistics about the index
type Status struct {
	Backend   string
	Documents int
	Pending   int // Documents without a checksum
	Sections  int
}

// Committed returns the number of documents carrying a checksum.
func (s *Status) Committed() int {
	return s.Documents - s.Pending
}
