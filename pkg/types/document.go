package types

import "strings"

// Meta is the flat metadata record extracted from a document's exported
// metadata declaration. Values are string, float64, bool or, for regular
// expression literals, their source text.
type Meta map[string]any

// Title returns the "title" entry when it is a string.
func (m Meta) Title() string {
	if v, ok := m["title"].(string); ok {
		return v
	}
	return ""
}

// Document represents an indexed documentation source file
type Document struct {
	ID       int64
	Path     string  // Logical path: root and extension stripped, leading "/"
	Checksum *string // Nullable - nil until every section is committed
	Meta     Meta
}

// Committed reports whether the document carries a commit marker.
func (d *Document) Committed() bool {
	return d.Checksum != nil
}

// Matches reports whether the stored checksum equals fingerprint.
func (d *Document) Matches(fingerprint string) bool {
	return d.Checksum != nil && *d.Checksum == fingerprint
}

// Validate checks if the document is valid
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Path) == "" {
		return ErrEmptyPath
	}
	return nil
}
