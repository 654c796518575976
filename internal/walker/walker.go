package walker

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtensions are the documentation file extensions indexed by default
var DefaultExtensions = []string{".mdx", ".md"}

// Options configures a Walker
type Options struct {
	Extensions []string // Defaults to DefaultExtensions
	Ignore     []string // doublestar patterns relative to the root
}

// Walker enumerates eligible documentation files
type Walker struct {
	tree       FileTree
	extensions []string
	ignore     []string
}

// New creates a Walker over tree
func New(tree FileTree, opts Options) *Walker {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &Walker{tree: tree, extensions: normalized, ignore: opts.Ignore}
}

// ValidatePatterns reports the first malformed ignore pattern
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return nil
}

// Walk returns eligible file paths under root, sorted. When several files
// share a logical path only one of them is returned.
func (w *Walker) Walk(ctx context.Context, root string) ([]string, error) {
	files, err := w.tree.ListFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	var eligible []string
	for _, f := range files {
		if !w.hasExtension(f) {
			continue
		}
		if w.ignored(relative(root, f)) {
			continue
		}
		eligible = append(eligible, f)
	}
	sort.Strings(eligible)
	return w.dedupe(ctx, root, eligible), nil
}

// dedupe keeps one file per logical path. The file whose extension comes
// first in the extension list wins; the others are logged and dropped.
func (w *Walker) dedupe(ctx context.Context, root string, files []string) []string {
	chosen := make(map[string]string, len(files))
	for _, f := range files {
		lp := LogicalPath(root, f)
		prev, ok := chosen[lp]
		if !ok {
			chosen[lp] = f
			continue
		}
		keep, drop := prev, f
		if w.rank(f) < w.rank(prev) {
			keep, drop = f, prev
		}
		chosen[lp] = keep
		slog.WarnContext(ctx, "duplicate logical path, skipping file",
			"path", lp, "file", drop, "indexed", keep)
	}

	out := files[:0]
	for _, f := range files {
		if chosen[LogicalPath(root, f)] == f {
			out = append(out, f)
		}
	}
	return out
}

func (w *Walker) rank(p string) int {
	ext := strings.ToLower(path.Ext(p))
	for i, e := range w.extensions {
		if ext == e {
			return i
		}
	}
	return len(w.extensions)
}

// Read returns the raw content of a file returned by Walk.
func (w *Walker) Read(ctx context.Context, path string) ([]byte, error) {
	return w.tree.Read(ctx, path)
}

func (w *Walker) hasExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ignored matches rel and each of its parent directories against the ignore list
func (w *Walker) ignored(rel string) bool {
	for _, pattern := range w.ignore {
		for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
			if ok, _ := doublestar.Match(pattern, p); ok {
				return true
			}
		}
	}
	return false
}

func relative(root, p string) string {
	if root == "." || root == "" {
		return p
	}
	rel := strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
	return rel
}

// LogicalPath derives a document's unique path from its file path: the root
// prefix and extension are stripped and the result is rooted at "/".
func LogicalPath(root, file string) string {
	rel := relative(root, file)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return "/" + strings.TrimPrefix(rel, "/")
}
