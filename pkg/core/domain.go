// Package core holds the storage-agnostic domain of a case vault:
// documents persisted by adapters and the entities evidence attaches to.
package core

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Document is the unit a storage adapter persists.
// Evidence records, notes and reports are all documents; the Metadata
// carries the structured fields and Content the markdown body.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

type contextKey string

// ChangeReasonKey is the context key for passing the commit message/change reason.
const ChangeReasonKey contextKey = "change_reason"
