package platform

import (
	"log/slog"

	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
)

// options holds the internal configuration for opening a vault.
type options struct {
	repository core.Repository
	blobs      evidence.BlobStore
	confirmer  evidence.Confirmer
	onUpdated  func()
	logger     *slog.Logger
	config     map[string]interface{}
}

// Option defines a functional option for configuring a vault.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAutoInit enables automatic initialization of the vault (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables git versioning.
// Passing false writes documents without committing them.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["gitless"] = !enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a document repository instead of the filesystem vault.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithSystemDir sets the hidden directory name. Defaults to ".dossier".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Write operations (Save, Delete, Sync) return ErrReadOnly.
// 2. Initialization (Mkdir, Git Init) is skipped.
// 3. Cache updates are not persisted to disk.
// 4. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true), a temporary directory replaces the vault path.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithIDStrategy selects how evidence IDs are generated ("random" or "content").
// It overrides id_strategy from dossier.yaml.
func WithIDStrategy(name string) Option {
	return func(o *options) {
		o.config["id_strategy"] = name
	}
}

// WithBlobStore injects the attachment store, overriding the blob backend
// from dossier.yaml.
func WithBlobStore(b evidence.BlobStore) Option {
	return func(o *options) {
		o.blobs = b
	}
}

// WithConfirmer sets the prompt used before evidence is deleted.
func WithConfirmer(c evidence.Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithOnUpdated registers the refresh callback fired after ingestion or deletion.
func WithOnUpdated(fn func()) Option {
	return func(o *options) {
		o.onUpdated = fn
	}
}
