package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/dossier/internal/fsutil"
)

// InboxConfig configures a drop directory watcher.
type InboxConfig struct {
	Dir          string
	Pattern      string        // doublestar pattern matched against file names; default "*"
	Debounce     time.Duration // quiet period before a dropped file is reported; default 200ms
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Inbox watches a directory and reports files dropped into it, once each
// file has stopped changing for the debounce period.
type Inbox struct {
	config InboxConfig
}

// NewInbox validates the configuration and returns an Inbox.
func NewInbox(config InboxConfig) (*Inbox, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	if config.Pattern == "" {
		config.Pattern = "*"
	}
	if !doublestar.ValidatePattern(config.Pattern) {
		return nil, fmt.Errorf("invalid inbox pattern: %q", config.Pattern)
	}
	if config.Debounce <= 0 {
		config.Debounce = 200 * time.Millisecond
	}
	return &Inbox{config: config}, nil
}

// Watch starts watching and returns a channel of absolute file paths.
// The channel is closed once ctx is done and all pending files are flushed.
func (i *Inbox) Watch(ctx context.Context) (<-chan string, error) {
	dir, err := filepath.Abs(i.config.Dir)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan string)
	d := newDebouncer(i.config.Debounce)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer d.stopAndWait()
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !i.matches(event.Name) {
					continue
				}
				path := event.Name
				d.add(path, func() { i.emit(ctx, path, out) })

			case wErr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				i.handleError(wErr)
			}
		}
	}, lifecycle.WithErrorHandler(i.handleError))

	return out, nil
}

func (i *Inbox) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, fsutil.TempFilePrefix) {
		return false
	}
	ok, err := doublestar.Match(i.config.Pattern, name)
	return err == nil && ok
}

func (i *Inbox) emit(ctx context.Context, path string, out chan<- string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if i.config.Logger != nil {
		i.config.Logger.Debug("inbox file ready", "path", path, "bytes", info.Size())
	}
	select {
	case out <- path:
	case <-ctx.Done():
	}
}

func (i *Inbox) handleError(err error) {
	if i.config.Logger != nil {
		i.config.Logger.Error("inbox watcher error", "error", err)
	}
	if i.config.ErrorHandler != nil {
		i.config.ErrorHandler(err)
	}
}

// debouncer delays a callback per key until events for that key stop arriving.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		stopped := d.stopped
		if d.timers[key] == timer {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		if !stopped {
			fn()
		}
	})
	d.timers[key] = timer
}

// stopAndWait cancels pending callbacks and waits for running ones.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
