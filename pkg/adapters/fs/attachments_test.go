package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachments(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	store := repo.Attachments()

	require.NoError(t, store.Put(ctx, "Attachments/Persons/7/id card.jpg", "image/jpeg", []byte("jpeg")))

	data, err := os.ReadFile(filepath.Join(path, "Attachments", "Persons", "7", "id card.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, store.Remove(ctx, "Attachments/Persons/7/id card.jpg"))
	_, err = os.Stat(filepath.Join(path, "Attachments", "Persons", "7", "id card.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(ctx, "Attachments/Persons/7/missing.jpg"), "removing a missing file is a no-op")
	assert.Error(t, store.Put(ctx, "../outside.txt", "", []byte("x")))
}
