package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInbox_Validation(t *testing.T) {
	_, err := NewInbox(InboxConfig{})
	assert.Error(t, err, "dir is required")

	_, err = NewInbox(InboxConfig{Dir: t.TempDir(), Pattern: "[unclosed"})
	assert.Error(t, err, "bad pattern is rejected")

	inbox, err := NewInbox(InboxConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "*", inbox.config.Pattern)
}

func TestInbox_Matches(t *testing.T) {
	inbox, err := NewInbox(InboxConfig{Dir: t.TempDir(), Pattern: "*.{png,pdf}"})
	require.NoError(t, err)

	assert.True(t, inbox.matches("/drop/shot.png"))
	assert.True(t, inbox.matches("/drop/whois.pdf"))
	assert.False(t, inbox.matches("/drop/notes.txt"))
	assert.False(t, inbox.matches("/drop/.hidden.png"))
	assert.False(t, inbox.matches("/drop/dossier-tmp-123.png"))
}

func TestInbox_ReportsDroppedFiles(t *testing.T) {
	dir := t.TempDir()
	inbox, err := NewInbox(InboxConfig{Dir: dir, Pattern: "*.txt", Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, err := inbox.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.bin"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("evidence"), 0644))

	select {
	case p := <-paths:
		assert.Equal(t, "dropped.txt", filepath.Base(p))
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for dropped file")
	}

	cancel()
	select {
	case _, ok := <-paths:
		for ok {
			_, ok = <-paths
		}
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	calls := make(chan struct{}, 10)

	for i := 0; i < 5; i++ {
		d.add("same", func() { calls <- struct{}{} })
	}

	time.Sleep(100 * time.Millisecond)
	d.stopAndWait()

	assert.Len(t, calls, 1)

	d.add("after-stop", func() { calls <- struct{}{} })
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, calls, 1, "no callbacks after stop")
}
