package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/dossier/internal/fsutil"
	"github.com/aretw0/dossier/pkg/core"
)

// Attachments stores evidence file bytes inside the vault, under the
// storage path recorded on each evidence record
// (e.g. "Attachments/Sites/42/screenshot.png").
type Attachments struct {
	repo *Repository
}

// Attachments returns the blob store bound to this vault.
func (r *Repository) Attachments() *Attachments {
	return &Attachments{repo: r}
}

// Put writes data at the vault-relative path and, in git mode, commits it.
func (a *Attachments) Put(ctx context.Context, path, mimeType string, data []byte) error {
	if a.repo.config.ReadOnly {
		return core.ErrReadOnly
	}

	rel, err := attachmentFile(path)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(a.repo.Path, rel)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create attachment directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write attachment: %w", err)
	}

	if a.repo.config.Logger != nil {
		a.repo.config.Logger.Debug("attachment stored", "path", path, "mime", mimeType, "bytes", len(data))
	}

	if a.repo.config.Gitless {
		return nil
	}
	return a.repo.commit("chore(attachments): add "+path, func() error {
		return a.repo.git.Add(filepath.ToSlash(rel))
	})
}

// Remove deletes the attachment at path. A missing file is not an error.
func (a *Attachments) Remove(ctx context.Context, path string) error {
	if a.repo.config.ReadOnly {
		return core.ErrReadOnly
	}

	rel, err := attachmentFile(path)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(a.repo.Path, rel)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	if a.repo.config.Gitless {
		return os.Remove(fullPath)
	}
	return a.repo.commit("chore(attachments): remove "+path, func() error {
		return a.repo.git.Rm(filepath.ToSlash(rel))
	})
}

func attachmentFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("attachment: %w", core.ErrEmptyID)
	}
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", errUnsafeID, path)
	}
	return rel, nil
}
