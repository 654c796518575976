package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
)

// ErrTraversal is returned when a directory under the root cannot be enumerated
var ErrTraversal = errors.New("traversal failed")

// Policy controls how directory enumeration failures are handled
type Policy string

const (
	PolicyAbort Policy = "abort"
	PolicySkip  Policy = "skip"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAbort, "":
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown traversal policy %q", s)
	}
}

// FileTree lists documentation source files and reads their raw content
type FileTree interface {
	ListFiles(ctx context.Context, root string) ([]string, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// FSTree implements FileTree over an fs.FS
type FSTree struct {
	fsys   fs.FS
	policy Policy
}

// NewFSTree creates a FileTree backed by fsys
func NewFSTree(fsys fs.FS, policy Policy) *FSTree {
	if policy == "" {
		policy = PolicyAbort
	}
	return &FSTree{fsys: fsys, policy: policy}
}

// ListFiles returns every regular file below root in lexical order.
// Symbolic links to regular files are listed; links to directories are
// not followed, so no directory is visited twice.
func (t *FSTree) ListFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := fs.WalkDir(t.fsys, root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// d is nil only when root itself could not be read
			if d == nil || path == root || t.policy == PolicyAbort {
				return fmt.Errorf("%w: %s: %v", ErrTraversal, path, err)
			}
			slog.WarnContext(ctx, "skipping unreadable directory", "path", path, "error", err)
			return fs.SkipDir
		}
		switch {
		case d.Type().IsRegular():
			files = append(files, path)
		case d.Type()&fs.ModeSymlink != 0:
			// Links to files are followed; links to directories are not
			info, err := fs.Stat(t.fsys, path)
			if err == nil && info.Mode().IsRegular() {
				files = append(files, path)
				return nil
			}
			slog.DebugContext(ctx, "skipping symbolic link", "path", path, "error", err)
		case !d.IsDir():
			slog.DebugContext(ctx, "skipping irregular file", "path", path, "mode", d.Type().String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Read returns the raw bytes of path
func (t *FSTree) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(t.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
