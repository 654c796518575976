package types

import "strings"

// Section represents one heading-delimited markdown fragment of a document
type Section struct {
	// Identification
	ID         int64
	DocumentID int64
	Sequence   int // Position within the document (0-based)

	// Content
	Heading string // Plain text of the triggering heading; empty for leading content
	Slug    string
	Content string

	// Embedding
	TokenCount int
	Embedding  []float32
}

// Validate checks if the section is valid
func (s *Section) Validate() error {
	if s.Sequence < 0 {
		return ErrInvalidSequence
	}
	if strings.TrimSpace(s.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// EmbeddingInput returns the text sent to the embedding provider. Newlines
// are flattened to spaces; the stored content keeps them.
func (s *Section) EmbeddingInput() string {
	return strings.ReplaceAll(s.Content, "\n", " ")
}
