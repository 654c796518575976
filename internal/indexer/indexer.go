package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/docsync/internal/chunker"
	"github.com/dshills/docsync/internal/embedder"
	"github.com/dshills/docsync/internal/logger"
	"github.com/dshills/docsync/internal/parser"
	"github.com/dshills/docsync/internal/runlock"
	"github.com/dshills/docsync/internal/storage"
	"github.com/dshills/docsync/internal/walker"
	"github.com/dshills/docsync/pkg/types"
)

// ErrSyncInProgress is returned when a sync is already running
var ErrSyncInProgress = errors.New("sync already in progress")

// LockName is the name of the cross-process run lock.
const LockName = "sync"

// DefaultLockTTL bounds how long a crashed process can hold the run lock.
const DefaultLockTTL = 10 * time.Minute

// Indexer coordinates the sync pipeline: walk -> parse -> split -> embed -> store
type Indexer struct {
	walker   *walker.Walker
	parser   *parser.Parser
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	storage  storage.Store

	lock    IndexLock
	locker  runlock.Locker
	lockTTL time.Duration
}

// Option configures an Indexer
type Option func(*Indexer)

// WithLocker serializes runs across processes through l.
func WithLocker(l runlock.Locker, ttl time.Duration) Option {
	return func(idx *Indexer) {
		idx.locker = l
		if ttl > 0 {
			idx.lockTTL = ttl
		}
	}
}

// SyncConfig contains per-run options
type SyncConfig struct {
	Refresh bool // Reprocess every document regardless of its checksum
}

// Statistics contains statistics about a sync run
type Statistics struct {
	RunID            string
	Discovered       int
	Skipped          int
	Indexed          int
	Failed           int
	SectionsDeleted  int
	SectionsInserted int
	EmbeddingCalls   int
	TokensUsed       int
	Duration         time.Duration
	Failures         []*types.DocumentError
}

// HasFailures reports whether any document failed
func (s *Statistics) HasFailures() bool {
	return s.Failed > 0
}

// New creates a new Indexer instance
func New(w *walker.Walker, emb embedder.Embedder, store storage.Store, opts ...Option) *Indexer {
	idx := &Indexer{
		walker:   w,
		parser:   parser.New(),
		chunker:  chunker.New(),
		embedder: emb,
		storage:  store,
		lockTTL:  DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Running reports whether a sync is in progress
func (idx *Indexer) Running() bool {
	return idx.lock.Held()
}

// Status returns the store's view of the index
func (idx *Indexer) Status(ctx context.Context) (*storage.Status, error) {
	return idx.storage.GetStatus(ctx)
}

// Sync reconciles the index with every document under root. Documents are
// processed one at a time; a failing document is recorded in the returned
// statistics and does not stop the run. Only discovery errors, lock
// errors and cancellation end a run early. On cancellation the statistics
// gathered so far are returned along with the context error.
func (idx *Indexer) Sync(ctx context.Context, root string, cfg *SyncConfig) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrSyncInProgress
	}
	defer idx.lock.Release()

	if cfg == nil {
		cfg = &SyncConfig{}
	}

	runID, ok := logger.RunID(ctx)
	if !ok {
		runID = logger.NewRunID()
		ctx = logger.WithRunID(ctx, runID)
	}

	if idx.locker != nil {
		release, err := idx.acquireRunLock(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		defer release()
	}

	startTime := time.Now()
	stats := &Statistics{RunID: runID}

	files, err := idx.walker.Walk(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}
	stats.Discovered = len(files)
	slog.InfoContext(ctx, "discovered documents", "root", root, "count", len(files), "refresh", cfg.Refresh)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(startTime)
			slog.WarnContext(ctx, "sync cancelled", "processed", stats.Skipped+stats.Indexed+stats.Failed, "remaining", stats.Discovered-stats.Skipped-stats.Indexed-stats.Failed)
			return stats, err
		}

		docErr := idx.syncDocument(ctx, root, file, cfg, stats)
		if docErr != nil {
			stats.Failed++
			stats.Failures = append(stats.Failures, docErr)
			slog.ErrorContext(ctx, "document failed", "path", docErr.Path, "stage", string(docErr.Stage), "error", docErr.Err)
		}
	}

	stats.Duration = time.Since(startTime)
	slog.InfoContext(ctx, "sync complete",
		"discovered", stats.Discovered,
		"skipped", stats.Skipped,
		"indexed", stats.Indexed,
		"failed", stats.Failed,
		"sections", stats.SectionsInserted,
		"embedding_calls", stats.EmbeddingCalls,
		"duration", stats.Duration)

	return stats, nil
}

// holder is a Locker that can keep its lock alive for a run of any length
type holder interface {
	Hold(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

func (idx *Indexer) acquireRunLock(ctx context.Context) (func(), error) {
	if h, ok := idx.locker.(holder); ok {
		return h.Hold(ctx, LockName, idx.lockTTL)
	}
	if err := idx.locker.Acquire(ctx, LockName, idx.lockTTL); err != nil {
		return nil, err
	}
	return func() {
		if err := idx.locker.Release(context.WithoutCancel(ctx), LockName); err != nil {
			slog.WarnContext(ctx, "failed to release run lock", "error", err)
		}
	}, nil
}

// syncDocument runs the per-document cycle. The stored checksum is cleared
// before any section is written and set again only after every section has
// been embedded and inserted, so an interrupted cycle always leaves the
// document marked for reprocessing.
func (idx *Indexer) syncDocument(ctx context.Context, root, file string, cfg *SyncConfig, stats *Statistics) *types.DocumentError {
	path := walker.LogicalPath(root, file)
	fail := func(stage types.Stage, err error) *types.DocumentError {
		return &types.DocumentError{Path: path, Stage: stage, Err: err}
	}

	raw, err := idx.walker.Read(ctx, file)
	if err != nil {
		return fail(types.StageRead, err)
	}
	fingerprint := Fingerprint(raw)

	existing, err := idx.storage.FindByPath(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		existing = nil
	} else if err != nil {
		return fail(types.StageLookup, err)
	}

	if existing != nil && existing.Matches(fingerprint) && !cfg.Refresh {
		stats.Skipped++
		slog.DebugContext(ctx, "document unchanged", "path", path)
		return nil
	}

	doc, err := idx.parser.Parse(raw)
	if err != nil {
		return fail(types.StageParse, err)
	}

	var documentID int64
	if existing != nil {
		if existing.Matches(fingerprint) {
			slog.InfoContext(ctx, "refresh flag set, replacing sections", "path", path)
		} else {
			slog.InfoContext(ctx, "document changed, replacing sections", "path", path)
		}
		n, err := idx.storage.DeleteSections(ctx, existing.ID)
		if err != nil {
			return fail(types.StageDeleteSections, err)
		}
		stats.SectionsDeleted += n
	} else {
		slog.InfoContext(ctx, "new document", "path", path)
	}

	documentID, err = idx.storage.UpsertDocument(ctx, path, nil, doc.Meta)
	if err != nil {
		return fail(types.StageUpsert, err)
	}

	sections := idx.chunker.Split(doc.Tree)
	for i := range sections {
		if err := sections[i].Validate(); err != nil {
			return fail(types.StageSplit, fmt.Errorf("section %d: %w", i, err))
		}
	}

	for i := range sections {
		section := &sections[i]
		section.DocumentID = documentID

		stats.EmbeddingCalls++
		emb, err := idx.embedder.Embed(ctx, section.EmbeddingInput())
		if err != nil {
			return fail(types.StageEmbed, fmt.Errorf("section %d: %w", section.Sequence, err))
		}
		section.Embedding = emb.Vector
		if emb.TokenCount > 0 {
			section.TokenCount = emb.TokenCount
		}
		stats.TokensUsed += section.TokenCount

		if err := idx.storage.InsertSection(ctx, section); err != nil {
			return fail(types.StageInsertSection, fmt.Errorf("section %d: %w", section.Sequence, err))
		}
		stats.SectionsInserted++
	}

	if err := idx.storage.SetChecksum(ctx, documentID, fingerprint); err != nil {
		return fail(types.StageSetChecksum, err)
	}

	stats.Indexed++
	slog.DebugContext(ctx, "document indexed", "path", path, "sections", len(sections))
	return nil
}
