// Package walker enumerates documentation source files under a root.
//
// A FileTree lists files and reads their raw bytes. FSTree implements it over
// any fs.FS, so production code passes os.DirFS and tests pass fstest.MapFS.
// Walker narrows the listing to files with a documentation extension that are
// not matched by an ignore pattern, and returns them in a stable order.
//
// # Traversal Errors
//
// When a directory cannot be enumerated the policy decides what happens:
//   - PolicyAbort (default): the error is returned and the run stops
//   - PolicySkip: the subtree is logged and skipped
//
// Ignore patterns use doublestar syntax and are matched against the path
// relative to the root:
//
//	w := walker.New(walker.NewFSTree(os.DirFS("pages"), walker.PolicyAbort), walker.Options{
//	    Extensions: []string{".mdx", ".md"},
//	    Ignore:     []string{"404.mdx", "**/drafts/**"},
//	})
//	paths, err := w.Walk(ctx, ".")
package walker
