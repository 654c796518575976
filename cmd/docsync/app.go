package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dshills/docsync/internal/config"
	"github.com/dshills/docsync/internal/embedder"
	"github.com/dshills/docsync/internal/indexer"
	"github.com/dshills/docsync/internal/runlock"
	"github.com/dshills/docsync/internal/storage"
	"github.com/dshills/docsync/internal/storage/postgres"
	"github.com/dshills/docsync/internal/walker"
)

// syncRoot is the root handed to the indexer. The file tree is rooted at
// the documentation directory itself, so logical paths start right below it.
const syncRoot = "."

// app holds the components a sync needs
type app struct {
	cfg      *config.Config
	root     string // absolute documentation root
	store    storage.Store
	embedder embedder.Embedder
	locker   *runlock.RedisLock
	indexer  *indexer.Indexer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	opts, policy, err := cfg.Walker()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, root: root}

	a.store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.embedder, err = embedder.New(cfg.Embedder())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	var idxOpts []indexer.Option
	if cfg.RedisURL != "" {
		a.locker, err = runlock.NewRedisLockFromURL(cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, err
		}
		idxOpts = append(idxOpts, indexer.WithLocker(a.locker, cfg.LockTTL))
	}

	w := walker.New(walker.NewFSTree(os.DirFS(root), policy), opts)
	a.indexer = indexer.New(w, a.embedder, a.store, idxOpts...)

	slog.DebugContext(ctx, "pipeline ready",
		"root", root,
		"store", cfg.Store,
		"provider", a.embedder.Provider(),
		"model", a.embedder.Model(),
		"dimension", a.embedder.Dimension(),
		"run_lock", a.locker != nil)
	return a, nil
}

func (a *app) close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.locker != nil {
		_ = a.locker.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}
}

// openStore opens the configured document store
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}

	switch cfg.Store {
	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.BootstrapRetryAttempts, cfg.BootstrapRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	default:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		store, err := storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	}
}
