package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docsync/internal/storage"
	"github.com/dshills/docsync/internal/storage/postgres"
	"github.com/dshills/docsync/pkg/types"
)

func newMockStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return postgres.New(db), mock
}

func TestStore_FindByPath(t *testing.T) {
	query := regexp.QuoteMeta("SELECT id, path, checksum, meta FROM page WHERE path = $1")

	t.Run("Found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(query).
			WithArgs("/guides/auth").
			WillReturnRows(sqlmock.NewRows([]string{"id", "path", "checksum", "meta"}).
				AddRow(7, "/guides/auth", "sum", []byte(`{"title":"Auth","draft":false}`)))

		doc, err := store.FindByPath(context.Background(), "/guides/auth")
		require.NoError(t, err)
		assert.Equal(t, int64(7), doc.ID)
		assert.True(t, doc.Matches("sum"))
		assert.Equal(t, types.Meta{"title": "Auth", "draft": false}, doc.Meta)
	})

	t.Run("Null checksum and meta", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(query).
			WithArgs("/a").
			WillReturnRows(sqlmock.NewRows([]string{"id", "path", "checksum", "meta"}).
				AddRow(1, "/a", nil, nil))

		doc, err := store.FindByPath(context.Background(), "/a")
		require.NoError(t, err)
		assert.Nil(t, doc.Checksum)
		assert.Nil(t, doc.Meta)
	})

	t.Run("NotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(query).WithArgs("/missing").WillReturnError(sql.ErrNoRows)

		_, err := store.FindByPath(context.Background(), "/missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStore_UpsertDocument(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO page (path, checksum, meta) VALUES ($1, $2, $3) ON CONFLICT (path) DO UPDATE")).
		WithArgs("/a", nil, `{"title":"A"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, err := store.UpsertDocument(context.Background(), "/a", nil, types.Meta{"title": "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = store.UpsertDocument(context.Background(), "", nil, nil)
	assert.ErrorIs(t, err, types.ErrEmptyPath)
}

func TestStore_SetChecksum(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE page SET checksum = $1, updated_at = now() WHERE id = $2")

	t.Run("Success", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(query).WithArgs("sum", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, store.SetChecksum(context.Background(), 3, "sum"))
	})

	t.Run("NotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(query).WithArgs("sum", int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, store.SetChecksum(context.Background(), 4, "sum"), storage.ErrNotFound)
	})
}

func TestStore_DeleteSections(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM page_section WHERE page_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.DeleteSections(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_DeleteSectionsError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection lost")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM page_section")).WillReturnError(boom)

	_, err := store.DeleteSections(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
}

func TestStore_InsertSection(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO page_section (page_id, sequence, heading, slug, content, token_count, embedding)")).
		WithArgs(int64(3), 1, "Setup", "setup", "## Setup", 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	sec := &types.Section{
		DocumentID: 3,
		Sequence:   1,
		Heading:    "Setup",
		Slug:       "setup",
		Content:    "## Setup",
		TokenCount: 2,
		Embedding:  []float32{1, 2, 3},
	}
	require.NoError(t, store.InsertSection(context.Background(), sec))
	assert.Equal(t, int64(11), sec.ID)

	assert.ErrorIs(t, store.InsertSection(context.Background(), &types.Section{Content: "x"}), types.ErrInvalidDocumentID)
}

func TestStore_ListSections(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "page_id", "sequence", "heading", "slug", "content", "token_count", "embedding"}).
		AddRow(1, 3, 0, "", "", "intro", 1, "[0.5,1]").
		AddRow(2, 3, 1, "Setup", "setup", "## Setup", 2, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM page_section WHERE page_id = $1 ORDER BY sequence")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	sections, err := store.ListSections(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, []float32{0.5, 1}, sections[0].Embedding)
	assert.Nil(t, sections[1].Embedding)
	assert.Equal(t, "setup", sections[1].Slug)
}

func TestStore_GetStatus(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT (SELECT COUNT(*) FROM page)")).
		WillReturnRows(sqlmock.NewRows([]string{"documents", "pending", "sections"}).AddRow(5, 1, 20))

	status, err := store.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "postgres", status.Backend)
	assert.Equal(t, 5, status.Documents)
	assert.Equal(t, 4, status.Committed())
	assert.Equal(t, 20, status.Sections)
}
