package evidence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
)

var site = core.Entity{Type: core.EntitySite, ID: "42", Name: "example.org"}

func threeFiles() []evidence.File {
	return []evidence.File{
		memFile{name: "a.png", mime: "image/png", data: []byte("aaa")},
		memFile{name: "b.txt", mime: "text/plain", data: []byte("bbbb")},
		memFile{name: "c.pdf", mime: "application/pdf", data: []byte("ccccc")},
	}
}

func sequentialIDs() evidence.IDGenerator {
	n := 0
	return func(string, []byte) string {
		n++
		return string(rune('0' + n))
	}
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Creates One Record Per File In Order", func(t *testing.T) {
		store := &recordingStore{}
		refreshes := 0
		ing := evidence.NewIngestor(store,
			evidence.WithIDGenerator(sequentialIDs()),
			evidence.WithClock(func() time.Time { return fixed }),
			evidence.WithOnUpdated(func() { refreshes++ }),
		)

		batch, err := ing.Ingest(ctx, site, threeFiles())
		require.NoError(t, err)

		require.Len(t, store.created, 3)
		assert.Equal(t, "a.png", store.created[0].FileName)
		assert.Equal(t, "b.txt", store.created[1].FileName)
		assert.Equal(t, "c.pdf", store.created[2].FileName)
		assert.Equal(t, "Attachments/Sites/42/b.txt", store.created[1].FilePath)

		assert.Equal(t, store.created, batch.Records())
		assert.Equal(t, "data:image/png;base64,YWFh", batch.Items[0].Preview)
		assert.Equal(t, 1, refreshes)
		assert.False(t, ing.Uploading())
	})

	t.Run("Stops At First Failure", func(t *testing.T) {
		store := &recordingStore{failAt: 2}
		refreshes := 0
		ing := evidence.NewIngestor(store, evidence.WithOnUpdated(func() { refreshes++ }))

		batch, err := ing.Ingest(ctx, site, threeFiles())
		require.Error(t, err)

		var berr *evidence.BatchError
		require.True(t, errors.As(err, &berr))
		assert.Equal(t, 1, berr.Index)
		assert.Equal(t, "b.txt", berr.FileName)
		assert.Equal(t, 1, berr.Created)
		assert.True(t, errors.Is(err, errStoreDown))

		assert.Equal(t, 2, store.calls, "third file must never be attempted")
		require.Len(t, store.created, 1)
		assert.Equal(t, "a.png", store.created[0].FileName)
		assert.Len(t, batch.Items, 1)

		assert.Equal(t, 0, refreshes)
		assert.False(t, ing.Uploading())
	})

	t.Run("Read Failure Aborts Before Create", func(t *testing.T) {
		store := &recordingStore{}
		ing := evidence.NewIngestor(store)

		files := []evidence.File{memFile{name: "gone.bin", openErr: errors.New("permission denied")}}
		_, err := ing.Ingest(ctx, site, files)

		require.Error(t, err)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("Empty Batch Is A No-Op", func(t *testing.T) {
		store := &recordingStore{}
		refreshes := 0
		ing := evidence.NewIngestor(store, evidence.WithOnUpdated(func() { refreshes++ }))

		batch, err := ing.Ingest(ctx, site, nil)
		require.NoError(t, err)
		assert.Empty(t, batch.Items)
		assert.Equal(t, 0, store.calls)
		assert.Equal(t, 0, refreshes)
		assert.False(t, ing.Uploading())
	})

	t.Run("Uploading While In Progress", func(t *testing.T) {
		store := &recordingStore{}
		ing := evidence.NewIngestor(store)
		var seen []bool
		store.onCreate = func() { seen = append(seen, ing.Uploading()) }

		_, err := ing.Ingest(ctx, site, threeFiles())
		require.NoError(t, err)
		assert.Equal(t, []bool{true, true, true}, seen)
		assert.False(t, ing.Uploading())
	})

	t.Run("Invalid Entity", func(t *testing.T) {
		store := &recordingStore{}
		ing := evidence.NewIngestor(store)

		_, err := ing.Ingest(ctx, core.Entity{Type: "org", ID: "1"}, threeFiles())
		assert.True(t, errors.Is(err, core.ErrInvalidEntityType))
		assert.Equal(t, 0, store.calls)
	})

	t.Run("Canceled Context", func(t *testing.T) {
		store := &recordingStore{}
		ing := evidence.NewIngestor(store)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := ing.Ingest(cctx, site, threeFiles())
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 0, store.calls)
	})

	t.Run("Blob Store Receives Bytes", func(t *testing.T) {
		store := &recordingStore{}
		blobs := &memBlobs{}
		ing := evidence.NewIngestor(store, evidence.WithBlobStore(blobs))

		_, err := ing.Ingest(ctx, site, threeFiles())
		require.NoError(t, err)
		assert.Equal(t, []byte("bbbb"), blobs.files["Attachments/Sites/42/b.txt"])
	})

	t.Run("Blob Failure Skips Create", func(t *testing.T) {
		store := &recordingStore{}
		blobs := &memBlobs{err: errors.New("bucket gone")}
		ing := evidence.NewIngestor(store, evidence.WithBlobStore(blobs))

		_, err := ing.Ingest(ctx, site, threeFiles())
		require.Error(t, err)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("Create Failure Removes Blob", func(t *testing.T) {
		store := &recordingStore{failAt: 1}
		blobs := &memBlobs{}
		ing := evidence.NewIngestor(store, evidence.WithBlobStore(blobs))

		_, err := ing.Ingest(ctx, site, threeFiles())
		require.ErrorIs(t, err, errStoreDown)
		assert.Empty(t, blobs.files)
		assert.Equal(t, []string{"Attachments/Sites/42/a.png"}, blobs.removed)
	})

	t.Run("Duplicate Content Leaves No Orphan", func(t *testing.T) {
		store := evidence.NewRepository(NewMockRepository())
		blobs := &memBlobs{}
		ing := evidence.NewIngestor(store,
			evidence.WithBlobStore(blobs),
			evidence.WithIDGenerator(evidence.ContentID),
		)

		_, err := ing.Ingest(ctx, site, []evidence.File{
			memFile{name: "a.png", mime: "image/png", data: []byte("same")},
			memFile{name: "copy-of-a.png", mime: "image/png", data: []byte("same")},
		})
		require.ErrorIs(t, err, evidence.ErrRecordExists)

		records, err := store.List(ctx, evidence.Filter{"entity_id": "42"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Contains(t, blobs.files, "Attachments/Sites/42/a.png")
		assert.NotContains(t, blobs.files, "Attachments/Sites/42/copy-of-a.png")
	})

	t.Run("Same Name Keeps Earlier Attachment On Create Failure", func(t *testing.T) {
		store := &recordingStore{failAt: 2}
		blobs := &memBlobs{}
		ing := evidence.NewIngestor(store, evidence.WithBlobStore(blobs))

		_, err := ing.Ingest(ctx, site, []evidence.File{memFile{name: "shot.png", data: []byte("first")}})
		require.NoError(t, err)
		_, err = ing.Ingest(ctx, site, []evidence.File{memFile{name: "shot.png", data: []byte("second")}})
		require.Error(t, err)
		assert.Contains(t, blobs.files, "Attachments/Sites/42/shot.png")
		assert.Empty(t, blobs.removed)
	})

	t.Run("State", func(t *testing.T) {
		store := &recordingStore{failAt: 1}
		ing := evidence.NewIngestor(store)

		_, _ = ing.Ingest(ctx, site, threeFiles())
		state := ing.State().(evidence.IngestorState)
		assert.Equal(t, int64(1), state.Batches)
		assert.Equal(t, int64(1), state.Failures)
		assert.Equal(t, "ingestor", ing.ComponentType())
	})
}

func TestIngestorDelete(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, opts ...evidence.IngestorOption) (*recordingStore, *memBlobs, *evidence.Ingestor, string) {
		store := &recordingStore{}
		blobs := &memBlobs{}
		opts = append([]evidence.IngestorOption{evidence.WithBlobStore(blobs)}, opts...)
		ing := evidence.NewIngestor(store, opts...)
		batch, err := ing.Ingest(ctx, site, threeFiles()[:1])
		require.NoError(t, err)
		return store, blobs, ing, batch.Items[0].Record.ID
	}

	t.Run("Confirmed", func(t *testing.T) {
		refreshes := 0
		var prompt string
		store, blobs, ing, id := seed(t,
			evidence.WithConfirmer(evidence.ConfirmFunc(func(p string) bool { prompt = p; return true })),
			evidence.WithOnUpdated(func() { refreshes++ }),
		)

		deleted, err := ing.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Contains(t, prompt, id)
		assert.Equal(t, []string{id}, store.deleted)
		assert.NotContains(t, blobs.files, "Attachments/Sites/42/a.png")
		assert.Equal(t, 2, refreshes)
	})

	t.Run("Shared Attachment Is Kept", func(t *testing.T) {
		store := &recordingStore{}
		blobs := &memBlobs{}
		ing := evidence.NewIngestor(store,
			evidence.WithBlobStore(blobs),
			evidence.WithConfirmer(evidence.ConfirmFunc(func(string) bool { return true })),
		)
		first, err := ing.Ingest(ctx, site, []evidence.File{memFile{name: "shot.png", data: []byte("first capture")}})
		require.NoError(t, err)
		second, err := ing.Ingest(ctx, site, []evidence.File{memFile{name: "shot.png", data: []byte("second capture")}})
		require.NoError(t, err)
		path := "Attachments/Sites/42/shot.png"

		deleted, err := ing.Delete(ctx, second.Items[0].Record.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Contains(t, blobs.files, path)
		assert.Empty(t, blobs.removed)

		deleted, err = ing.Delete(ctx, first.Items[0].Record.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.NotContains(t, blobs.files, path)
	})

	t.Run("Declined", func(t *testing.T) {
		refreshes := 0
		store, _, ing, id := seed(t,
			evidence.WithConfirmer(evidence.ConfirmFunc(func(string) bool { return false })),
			evidence.WithOnUpdated(func() { refreshes++ }),
		)

		deleted, err := ing.Delete(ctx, id)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Empty(t, store.deleted)
		assert.Equal(t, 1, refreshes)
	})

	t.Run("No Confirmer Declines", func(t *testing.T) {
		store, _, ing, id := seed(t)

		deleted, err := ing.Delete(ctx, id)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Empty(t, store.deleted)
	})

	t.Run("Store Failure Is Returned", func(t *testing.T) {
		refreshes := 0
		_, _, ing, _ := seed(t,
			evidence.WithConfirmer(evidence.ConfirmFunc(func(string) bool { return true })),
			evidence.WithOnUpdated(func() { refreshes++ }),
		)

		deleted, err := ing.Delete(ctx, "missing")
		assert.False(t, deleted)
		assert.True(t, errors.Is(err, core.ErrNotFound))
		assert.Equal(t, 1, refreshes)
	})
}
