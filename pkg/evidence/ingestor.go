package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/dossier/pkg/core"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Ingested pairs a stored record with a data URL preview of its content.
// The preview is never persisted.
type Ingested struct {
	Record  Record
	Preview string
}

// Batch is the outcome of one Ingest call.
type Batch struct {
	Items []Ingested
}

// Records returns the stored records in input order.
func (b Batch) Records() []Record {
	out := make([]Record, len(b.Items))
	for i, item := range b.Items {
		out[i] = item.Record
	}
	return out
}

// BatchError reports the file a batch stopped at. Records created before
// Index stay in the store.
type BatchError struct {
	Index    int
	FileName string
	Created  int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("ingest stopped at file %d (%s) after %d created: %v", e.Index, e.FileName, e.Created, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Ingestor turns selected files into evidence records, one file at a time.
type Ingestor struct {
	store     Store
	blobs     BlobStore
	newID     IDGenerator
	now       func() time.Time
	logger    *slog.Logger
	onUpdated func()
	confirm   Confirmer

	uploading atomic.Bool
	batches   atomic.Int64
	failures  atomic.Int64
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithBlobStore stores file bytes at each record's storage path before the
// record is created.
func WithBlobStore(b BlobStore) IngestorOption {
	return func(i *Ingestor) { i.blobs = b }
}

// WithIDGenerator overrides the default random identifiers.
func WithIDGenerator(gen IDGenerator) IngestorOption {
	return func(i *Ingestor) { i.newID = gen }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) IngestorOption {
	return func(i *Ingestor) { i.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) IngestorOption {
	return func(i *Ingestor) { i.logger = logger }
}

// WithOnUpdated registers the refresh callback fired after a completed
// batch or a deletion.
func WithOnUpdated(fn func()) IngestorOption {
	return func(i *Ingestor) { i.onUpdated = fn }
}

// WithConfirmer sets the confirmation prompt used by Delete.
func WithConfirmer(c Confirmer) IngestorOption {
	return func(i *Ingestor) { i.confirm = c }
}

// NewIngestor creates an Ingestor writing through store.
func NewIngestor(store Store, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		store:  store,
		newID:  RandomID,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Uploading reports whether a batch is in progress.
func (i *Ingestor) Uploading() bool {
	return i.uploading.Load()
}

// Ingest reads, describes and stores each file in order. The first failure
// ends the batch; the refresh callback only fires when every file succeeded.
// Concurrent calls are not serialized.
func (i *Ingestor) Ingest(ctx context.Context, entity core.Entity, files []File) (Batch, error) {
	if len(files) == 0 {
		return Batch{}, nil
	}
	if err := entity.Validate(); err != nil {
		return Batch{}, err
	}

	i.uploading.Store(true)
	defer i.uploading.Store(false)
	i.batches.Add(1)

	batch, stoppedAt, err := fold(files, Batch{}, func(b Batch, f File) (Batch, error) {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		item, err := i.ingestOne(ctx, entity, f)
		if err != nil {
			return b, err
		}
		b.Items = append(b.Items, item)
		return b, nil
	})
	if err != nil {
		i.failures.Add(1)
		berr := &BatchError{Index: stoppedAt, FileName: files[stoppedAt].Name(), Created: len(batch.Items), Err: err}
		i.logger.Error("evidence ingestion aborted",
			"entity_type", entity.Type,
			"entity_id", entity.ID,
			"file", berr.FileName,
			"created", berr.Created,
			"error", err,
		)
		return batch, berr
	}

	i.logger.Info("evidence ingested", "entity_type", entity.Type, "entity_id", entity.ID, "files", len(batch.Items))
	i.notify()
	return batch, nil
}

func (i *Ingestor) ingestOne(ctx context.Context, entity core.Entity, f File) (Ingested, error) {
	content, err := readAll(f)
	if err != nil {
		return Ingested{}, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	preview := DataURL(f.MIMEType(), content)

	rec, err := BuildRecord(entity, f, i.newID(f.Name(), content), i.now())
	if err != nil {
		return Ingested{}, err
	}

	shared := false
	if i.blobs != nil {
		shared = i.attachmentInUse(ctx, rec, "")
		if shared {
			i.logger.Warn("attachment overwritten", "path", rec.FilePath, "id", rec.ID)
		}
		if err := i.blobs.Put(ctx, rec.FilePath, rec.MIME(), content); err != nil {
			return Ingested{}, fmt.Errorf("store %s: %w", rec.FilePath, err)
		}
	}

	created, err := i.store.Create(ctx, rec)
	if err != nil {
		if i.blobs != nil && !shared {
			if rmErr := i.blobs.Remove(ctx, rec.FilePath); rmErr != nil {
				i.logger.Warn("orphaned attachment left behind", "path", rec.FilePath, "error", rmErr)
			}
		}
		return Ingested{}, fmt.Errorf("create record for %s: %w", f.Name(), err)
	}

	i.logger.Debug("evidence record created", "id", created.ID, "path", created.FilePath, "size", created.Size())
	return Ingested{Record: created, Preview: preview}, nil
}

// Delete removes a record after the user confirms. Without a Confirmer, or
// when the user declines, nothing is deleted and (false, nil) is returned.
func (i *Ingestor) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("record: %w", core.ErrEmptyID)
	}
	if i.confirm == nil || !i.confirm.Confirm(fmt.Sprintf("Delete evidence %s?", id)) {
		return false, nil
	}

	var attached Record
	if getter, ok := i.store.(interface {
		Get(ctx context.Context, id string) (Record, error)
	}); ok && i.blobs != nil {
		if rec, err := getter.Get(ctx, id); err == nil {
			attached = rec
		}
	}

	if err := i.store.Delete(ctx, id); err != nil {
		i.logger.Error("evidence deletion failed", "id", id, "error", err)
		return false, err
	}

	switch {
	case attached.FilePath == "":
	case i.attachmentInUse(ctx, attached, id):
		i.logger.Debug("attachment kept, still referenced", "id", id, "path", attached.FilePath)
	default:
		if err := i.blobs.Remove(ctx, attached.FilePath); err != nil {
			i.logger.Warn("attachment left behind", "id", id, "path", attached.FilePath, "error", err)
		}
	}

	i.notify()
	return true, nil
}

// attachmentInUse reports whether a stored record other than exceptID points
// at rec.FilePath. A failed lookup counts as in use so bytes are never
// removed on a guess.
func (i *Ingestor) attachmentInUse(ctx context.Context, rec Record, exceptID string) bool {
	records, err := i.store.List(ctx, Filter{
		"entity_type": string(rec.EntityType),
		"entity_id":   rec.EntityID,
	})
	if err != nil {
		i.logger.Warn("attachment lookup failed", "path", rec.FilePath, "error", err)
		return true
	}
	for _, other := range records {
		if other.ID != exceptID && other.FilePath == rec.FilePath {
			return true
		}
	}
	return false
}

func (i *Ingestor) notify() {
	if i.onUpdated != nil {
		i.onUpdated()
	}
}

// fold applies step to each item in order and stops at the first error,
// returning the accumulator built so far and the index it stopped at.
func fold[T, A any](items []T, acc A, step func(A, T) (A, error)) (A, int, error) {
	for idx, item := range items {
		next, err := step(acc, item)
		if err != nil {
			return acc, idx, err
		}
		acc = next
	}
	return acc, len(items), nil
}

// IngestorState exposes internal state for observability.
type IngestorState struct {
	Uploading bool  `json:"uploading"`
	Batches   int64 `json:"batches"`
	Failures  int64 `json:"failures"`
	BlobStore bool  `json:"blob_store"`
}

// State implements introspection.Introspectable.
func (i *Ingestor) State() any {
	return IngestorState{
		Uploading: i.uploading.Load(),
		Batches:   i.batches.Load(),
		Failures:  i.failures.Load(),
		BlobStore: i.blobs != nil,
	}
}

// ComponentType implements introspection.Component.
func (i *Ingestor) ComponentType() string {
	return "ingestor"
}

var _ introspection.Introspectable = (*Ingestor)(nil)
var _ introspection.Component = (*Ingestor)(nil)
