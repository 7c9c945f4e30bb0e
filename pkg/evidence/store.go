package evidence

import (
	"context"
	"errors"
)

// Filter is an open key-value bag matched against record fields by their
// JSON names (e.g. "entity_type", "entity_id", "file_type").
type Filter map[string]string

// ErrRecordExists is returned when a record with the same ID is already stored.
var ErrRecordExists = errors.New("evidence record already exists")

// Store is the persistence boundary evidence records are written through.
type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// BlobStore receives the bytes of ingested files at their storage path.
type BlobStore interface {
	Put(ctx context.Context, path, mimeType string, data []byte) error
	Remove(ctx context.Context, path string) error
}
