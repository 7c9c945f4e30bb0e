// Package evidence ingests user-selected files as evidence records attached
// to a site or person, and defines the persistence boundary they are
// written through.
package evidence

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/dossier/pkg/core"
)

// Record is the metadata describing one file attached to an entity.
// It is created once at ingestion and never mutated by this package.
type Record struct {
	ID          string          `json:"id"`
	NoteID      *string         `json:"note_id"`
	EntityType  core.EntityType `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	FileName    string          `json:"file_name"`
	FilePath    string          `json:"file_path"`
	FileType    string          `json:"file_type"`
	MIMEType    *string         `json:"mime_type"`
	FileSize    *int64          `json:"file_size"`
	Description *string         `json:"description"`
	AIAnalysis  *string         `json:"ai_analysis"`
	CapturedAt  string          `json:"captured_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StoragePath returns the vault path of an attachment:
// "Attachments/<EntityFolder>/<entity_id>/<file_name>".
// It depends only on its arguments.
func StoragePath(entityType core.EntityType, entityID, fileName string) (string, error) {
	if err := entityType.Validate(); err != nil {
		return "", err
	}
	if entityID == "" {
		return "", fmt.Errorf("entity: %w", core.ErrEmptyID)
	}
	if fileName == "" {
		return "", fmt.Errorf("file name: %w", core.ErrEmptyID)
	}
	return path.Join("Attachments", entityType.Folder(), entityID, fileName), nil
}

// Extension returns the lowercase extension of fileName without the dot.
func Extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}

// BuildRecord derives a record for file attached to entity. It performs no
// I/O; the caller supplies the identifier and the creation time.
func BuildRecord(entity core.Entity, file File, id string, now time.Time) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record: %w", core.ErrEmptyID)
	}

	name := filepath.Base(file.Name())
	storage, err := StoragePath(entity.Type, entity.ID, name)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         id,
		EntityType: entity.Type,
		EntityID:   entity.ID,
		FileName:   name,
		FilePath:   storage,
		FileType:   Extension(name),
		CapturedAt: now.UTC().Format(time.RFC3339),
		CreatedAt:  now.UTC(),
	}
	if m := file.MIMEType(); m != "" {
		rec.MIMEType = &m
	}
	if size, ok := file.Size(); ok {
		rec.FileSize = &size
	}
	return rec, nil
}

// Size returns the byte size as a display string.
func (r Record) Size() string {
	return FormatSize(r.FileSize)
}

// MIME returns the MIME type or the empty string when unknown.
func (r Record) MIME() string {
	if r.MIMEType == nil {
		return ""
	}
	return *r.MIMEType
}
