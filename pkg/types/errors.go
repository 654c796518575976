package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyPath         = errors.New("document path cannot be empty")
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrInvalidSequence   = errors.New("sequence must be >= 0")
	ErrInvalidDocumentID = errors.New("invalid document ID")
)
