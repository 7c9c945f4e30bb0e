package dossier

import (
	"context"
	"log/slog"

	"github.com/aretw0/dossier/internal/platform"
	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
)

// --- Types ---

// Vault bundles the repository and the evidence pipeline of one case.
type Vault = platform.Vault

// Settings is the merged content of dossier.yaml and the environment.
type Settings = platform.Settings

// --- Configuration ---

// Option defines a functional option for opening a vault.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the vault (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables git versioning.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom document repository.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSystemDir sets the hidden directory name (default ".dossier").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithReadOnly opens the vault without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox used under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithIDStrategy selects "random" or "content" evidence IDs.
func WithIDStrategy(name string) Option {
	return platform.WithIDStrategy(name)
}

// WithBlobStore overrides where attachment bytes are written.
func WithBlobStore(b evidence.BlobStore) Option {
	return platform.WithBlobStore(b)
}

// WithConfirmer sets the prompt consulted before deleting evidence.
func WithConfirmer(c evidence.Confirmer) Option {
	return platform.WithConfirmer(c)
}

// WithOnUpdated registers the refresh callback fired after ingestion or deletion.
func WithOnUpdated(fn func()) Option {
	return platform.WithOnUpdated(fn)
}

// --- Factory ---

// Open initializes the vault at path and wires the evidence pipeline.
func Open(ctx context.Context, path string, opts ...Option) (*Vault, error) {
	return platform.Open(ctx, path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Operations ---

// Sync performs a synchronization (pull/push) of the vault.
func Sync(path string, opts ...Option) error {
	return platform.Sync(path, opts...)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadSettings reads dossier.yaml and .env from a vault root.
func LoadSettings(root string) (Settings, error) {
	return platform.LoadSettings(root)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat     = platform.CommitTypeFeat
	CommitTypeFix      = platform.CommitTypeFix
	CommitTypeDocs     = platform.CommitTypeDocs
	CommitTypeStyle    = platform.CommitTypeStyle
	CommitTypeRefactor = platform.CommitTypeRefactor
	CommitTypePerf     = platform.CommitTypePerf
	CommitTypeTest     = platform.CommitTypeTest
	CommitTypeChore    = platform.CommitTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return platform.FormatChangeReason(ctype, scope, subject, body)
}

// AppendFooter appends the Dossier footer to an arbitrary message.
func AppendFooter(msg string) string {
	return platform.AppendFooter(msg)
}
