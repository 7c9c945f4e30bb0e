package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aretw0/dossier/pkg/core"
)

// DocumentPrefix is the vault folder evidence documents live in.
const DocumentPrefix = "evidence/"

// Repository implements Store over a core.Repository. Each record becomes a
// document whose metadata is the record and whose body embeds the
// attachment as a wiki link.
type Repository struct {
	repo core.Repository
}

// NewRepository wraps an existing document repository.
func NewRepository(repo core.Repository) *Repository {
	return &Repository{repo: repo}
}

// Create persists a new record. Existing IDs are rejected with ErrRecordExists.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		return Record{}, fmt.Errorf("record: %w", core.ErrEmptyID)
	}

	if _, err := r.repo.Get(ctx, DocumentPrefix+rec.ID); err == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordExists, rec.ID)
	} else if !errors.Is(err, core.ErrNotFound) {
		return Record{}, err
	}

	doc, err := toDocument(rec)
	if err != nil {
		return Record{}, err
	}

	if _, ok := ctx.Value(core.ChangeReasonKey).(string); !ok {
		ctx = context.WithValue(ctx, core.ChangeReasonKey,
			fmt.Sprintf("feat(evidence): add %s to %s/%s", rec.FileName, rec.EntityType, rec.EntityID))
	}

	if err := r.repo.Save(ctx, doc); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get retrieves a record by ID.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record: %w", core.ErrEmptyID)
	}
	doc, err := r.repo.Get(ctx, DocumentPrefix+id)
	if err != nil {
		return Record{}, err
	}
	return fromDocument(doc)
}

// Delete removes a record by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("record: %w", core.ErrEmptyID)
	}
	if _, ok := ctx.Value(core.ChangeReasonKey).(string); !ok {
		ctx = context.WithValue(ctx, core.ChangeReasonKey, "chore(evidence): remove "+id)
	}
	return r.repo.Delete(ctx, DocumentPrefix+id)
}

// List returns the records matching every key of filter, oldest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Record, error) {
	docs, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, doc := range docs {
		if !strings.HasPrefix(doc.ID, DocumentPrefix) {
			continue
		}
		if !matches(doc.Metadata, filter) {
			continue
		}
		rec, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to process document %s: %w", doc.ID, err)
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matches(meta core.Metadata, filter Filter) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok || got == nil || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

func toDocument(rec Record) (core.Document, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	var meta core.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return core.Document{}, fmt.Errorf("failed to convert record to metadata: %w", err)
	}
	for k, v := range meta {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			meta[k] = int64(f)
		}
	}

	return core.Document{
		ID:       DocumentPrefix + rec.ID,
		Content:  "![[" + rec.FilePath + "]]\n",
		Metadata: meta,
	}, nil
}

func fromDocument(doc core.Document) (Record, error) {
	data, err := json.Marshal(doc.Metadata)
	if err != nil {
		return Record{}, fmt.Errorf("metadata marshal failed: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal to record failed: %w", err)
	}
	if rec.ID == "" {
		rec.ID = strings.TrimPrefix(doc.ID, DocumentPrefix)
	}
	return rec, nil
}
