// Package watcher re-runs a sync when documentation files change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must stay quiet before a sync runs
const DefaultDebounce = 500 * time.Millisecond

// SyncFunc is invoked after a burst of relevant changes.
type SyncFunc func(ctx context.Context) error

// Watcher watches a documentation root recursively
type Watcher struct {
	root       string
	extensions []string
	debounce   time.Duration
	fsw        *fsnotify.Watcher
}

// New starts watching root and every non-hidden directory below it.
func New(root string, extensions []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		root:       root,
		extensions: extensions,
		debounce:   debounce,
		fsw:        fsw,
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run calls fn after each debounced burst of relevant events until ctx is
// done. A failing fn is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn SyncFunc) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(event.Name) {
					if err := w.addTree(event.Name); err != nil {
						slog.WarnContext(ctx, "failed to watch new directory", "path", event.Name, "error", err)
					}
					// Files created before the watch was added are missed otherwise
					timer.Reset(w.debounce)
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			slog.DebugContext(ctx, "change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watch error", "error", err)

		case <-timer.C:
			if err := fn(ctx); err != nil {
				slog.ErrorContext(ctx, "sync after change failed", "error", err)
			}
		}
	}
}

// relevant reports whether event can change the indexed documents
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if isHidden(event.Name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, e := range w.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
