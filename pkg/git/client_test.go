package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, ".test.lock", nil)

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, ".test.lock")
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_LockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)
	client.LockTimeout = 30 * time.Millisecond

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer unlock()

	if _, err := client.Lock(); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout while lock is held, got %v", err)
	}
}

func TestClient_InitAndCommit(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if !client.IsRepo() {
		t.Fatal("expected IsRepo after init")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "a.md"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := client.Add("a.md"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := client.Commit("docs: add a"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != "" {
		t.Errorf("expected clean tree, got %q", status)
	}

	if client.HasRemote() {
		t.Error("fresh repo should have no remote")
	}
	if err := client.Sync(); err == nil {
		t.Error("expected Sync to fail without remote")
	}
}
