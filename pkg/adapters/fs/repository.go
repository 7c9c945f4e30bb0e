package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/dossier/internal/fsutil"
	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/git"
)

// AttachmentsDir is the vault folder holding evidence files. It is never
// scanned as documents.
const AttachmentsDir = "Attachments"

// Repository implements core.Repository using the filesystem and Git.
type Repository struct {
	Path   string
	git    *git.Client
	cache  *cache
	config Config

	mu       sync.RWMutex
	lastList *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	AutoInit  bool
	Gitless   bool
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".dossier"
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".dossier"
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
// In read-only mode only the existence of the vault is checked.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if r.config.ReadOnly {
		return nil
	}

	// The system directory marks the vault root, with or without Git.
	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}

	if r.config.Gitless {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		if err := r.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

// ensureIgnore keeps the system directory and lock file out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	wanted := []string{r.config.SystemDir + "/", r.config.SystemDir + ".lock"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range wanted {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}

	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Sync synchronizes the repository with its remote.
func (r *Repository) Sync(ctx context.Context) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if r.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode")
	}

	if !r.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", r.Path)
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return r.git.Sync()
}

// Save persists a document to the filesystem and commits it to Git.
//
// Workflow:
//  1. Validate the ID and resolve the target file.
//  2. Serialize metadata as YAML front-matter followed by the body.
//  3. Write atomically to disk and refresh the index entry.
//  4. (If Git enabled) 'git add' and 'git commit' with the context change reason.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename, err := documentFile(doc.ID)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(r.Path, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := fsutil.WriteFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if info, err := os.Stat(fullPath); err == nil {
		r.cache.Set(filepath.ToSlash(filename), &indexEntry{
			ID:           doc.ID,
			Content:      doc.Content,
			Metadata:     doc.Metadata,
			LastModified: info.ModTime(),
		})
	}

	if r.config.Gitless {
		return nil
	}

	msg := "update " + doc.ID
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}

	return r.commit(msg, func() error { return r.git.Add(filepath.ToSlash(filename)) })
}

// Get retrieves a document from the filesystem.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	filename, err := documentFile(id)
	if err != nil {
		return core.Document{}, err
	}

	f, err := os.Open(filepath.Join(r.Path, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return core.Document{}, err
	}
	defer f.Close()

	doc, err := parse(f)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	doc.ID = id

	return *doc, nil
}

// List scans the vault for all documents.
//
// Strategy:
//  1. Load the index cache from disk.
//  2. Walk the directory tree (skipping .git, the system dir and attachments).
//  3. For each markdown file, use the cached entry when its mtime matches,
//     otherwise parse it and refresh the entry.
//  4. Prune vanished entries and save the cache back to disk.
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	if err := r.cache.Load(); err != nil && r.config.Logger != nil {
		r.config.Logger.Warn("index cache unreadable, rebuilding", "error", err)
	}

	var docs []core.Document
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", r.config.SystemDir, AttachmentsDir:
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		id := strings.TrimSuffix(relPath, ".md")

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()
		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, mtime); hit {
			docs = append(docs, core.Document{
				ID:       entry.ID,
				Content:  entry.Content,
				Metadata: entry.Metadata,
			})
			return nil
		}

		doc, err := r.Get(ctx, id)
		if err != nil {
			if r.config.Logger != nil {
				r.config.Logger.Debug("skipping unparseable document", "id", id, "error", err)
			}
			return nil
		}

		r.cache.Set(relPath, &indexEntry{
			ID:           id,
			Content:      doc.Content,
			Metadata:     doc.Metadata,
			LastModified: mtime,
		})

		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Warn("failed to save index cache", "error", err)
		}
	}
	r.recordList()

	return docs, nil
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename, err := documentFile(id)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(r.Path, filename)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	r.cache.Delete(filepath.ToSlash(filename))

	if r.config.Gitless {
		if err := os.Remove(fullPath); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	}

	msg := "delete " + id
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}

	return r.commit(msg, func() error { return r.git.Rm(filepath.ToSlash(filename)) })
}

// commit stages changes with the given function and records a commit, all
// under the vault lock.
func (r *Repository) commit(msg string, stage func() error) error {
	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := stage(); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	if err := r.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

var errUnsafeID = errors.New("document id escapes the vault")

// documentFile maps a document ID to its vault-relative markdown file.
func documentFile(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("document: %w", core.ErrEmptyID)
	}
	filename := id
	if filepath.Ext(id) != ".md" {
		filename = id + ".md"
	}
	filename = filepath.FromSlash(filename)
	if !filepath.IsLocal(filename) {
		return "", fmt.Errorf("%w: %s", errUnsafeID, id)
	}
	return filename, nil
}

func (r *Repository) recordList() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastList = &now
}
