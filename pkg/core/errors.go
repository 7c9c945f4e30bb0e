package core

import "errors"

// Common errors.
var (
	ErrReadOnly          = errors.New("repository is in read-only mode")
	ErrNotFound          = errors.New("document not found")
	ErrEmptyID           = errors.New("id cannot be empty")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidConfidence = errors.New("invalid confidence level")
)
