package markdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"

	"github.com/aretw0/dossier/internal/fsutil"
)

// ExportResult is the input of both the renderer and the exporter.
// FilePath is shown to the user only.
type ExportResult struct {
	Markdown string
	FileName string
	FilePath string
}

// Raw returns the markdown exactly as given.
func Raw(r ExportResult) string {
	return r.Markdown
}

// DefaultCopiedFor is how long Copied reports true after a copy.
const DefaultCopiedFor = 2 * time.Second

// Fallback markers frame the text written for manual selection.
const (
	FallbackBegin = "----- BEGIN MARKDOWN (select and copy) -----"
	FallbackEnd   = "----- END MARKDOWN -----"
)

// ErrClipboardUnsupported is returned by the system clipboard when no
// clipboard utility is available.
var ErrClipboardUnsupported = errors.New("clipboard not supported on this system")

// ErrNoFileName is returned by Download when the result has no file name.
var ErrNoFileName = errors.New("export has no file name")

// Clipboard is a text sink for copy.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// Exporter copies and downloads raw markdown.
type Exporter struct {
	clipboard Clipboard
	fallback  io.Writer
	copiedFor time.Duration
	logger    *slog.Logger

	mu         sync.Mutex
	copied     atomic.Bool
	generation uint64
	timer      *time.Timer
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) ExporterOption {
	return func(e *Exporter) { e.clipboard = c }
}

// WithFallback sets where text goes when the clipboard fails.
// Defaults to os.Stdout.
func WithFallback(w io.Writer) ExporterOption {
	return func(e *Exporter) { e.fallback = w }
}

// WithCopiedFor sets how long the copied state lasts.
func WithCopiedFor(d time.Duration) ExporterOption {
	return func(e *Exporter) { e.copiedFor = d }
}

// WithExportLogger sets the diagnostic logger.
func WithExportLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) { e.logger = logger }
}

// NewExporter creates an Exporter backed by the system clipboard.
func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{
		clipboard: SystemClipboard{},
		fallback:  os.Stdout,
		copiedFor: DefaultCopiedFor,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Copied reports whether a copy happened within the last CopiedFor.
func (e *Exporter) Copied() bool {
	return e.copied.Load()
}

// Copy puts text on the clipboard. When the clipboard fails the text is
// written to the fallback writer between markers instead, and the clipboard
// error is only logged, as is a failing fallback writer. Either way the
// copied state is set.
func (e *Exporter) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.writeClipboard(text); err != nil {
		e.logger.Warn("clipboard unavailable, falling back to manual selection", "error", err)
		if _, werr := fmt.Fprintf(e.fallback, "%s\n%s\n%s\n", FallbackBegin, text, FallbackEnd); werr != nil {
			e.logger.Error("fallback copy failed", "error", werr)
		}
	}

	e.markCopied()
	return nil
}

func (e *Exporter) writeClipboard(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard panic: %v", r)
		}
	}()
	return e.clipboard.WriteAll(text)
}

func (e *Exporter) markCopied() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.copied.Store(true)
	e.generation++
	gen := e.generation
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.copiedFor, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.generation == gen {
			e.copied.Store(false)
		}
	})
}

// Download writes the raw markdown to dir/<FileName> as UTF-8 and returns
// the written path. The text goes through a temporary file that is removed
// whether or not the write succeeds.
func (e *Exporter) Download(r ExportResult, dir string) (string, error) {
	if r.FileName == "" {
		return "", ErrNoFileName
	}
	target := filepath.Join(dir, filepath.Base(r.FileName))
	if err := fsutil.WriteFileAtomic(target, []byte(Raw(r)), 0644); err != nil {
		return "", fmt.Errorf("download %s: %w", r.FileName, err)
	}
	e.logger.Debug("markdown downloaded", "path", target)
	return target, nil
}
