package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSystemDir is the hidden directory holding the index cache.
	DefaultSystemDir = ".dossier"
	// SettingsFile is the optional per-vault settings file.
	SettingsFile = "dossier.yaml"
)

// Blob backends.
const (
	BlobNone  = "none"
	BlobFS    = "fs"
	BlobMinio = "minio"
)

// BlobSettings selects where attachment bytes are written.
type BlobSettings struct {
	Backend   string `yaml:"backend"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Settings is the content of dossier.yaml merged with the environment.
type Settings struct {
	IDStrategy string       `yaml:"id_strategy,omitempty"`
	Gitless    *bool        `yaml:"gitless,omitempty"`
	Blob       BlobSettings `yaml:"blob"`
}

// LoadSettings reads dossier.yaml and .env from root. Both are optional.
// Variables already set in the process environment win over .env, and the
// environment wins over dossier.yaml. Credentials only come from the
// environment.
func LoadSettings(root string) (Settings, error) {
	s, err := readSettingsFile(root)
	if err != nil {
		return Settings{}, err
	}

	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Settings{}, fmt.Errorf("invalid .env: %w", err)
		}
	}

	override(&s.IDStrategy, "DOSSIER_ID_STRATEGY")
	override(&s.Blob.Backend, "DOSSIER_BLOB")
	override(&s.Blob.Endpoint, "DOSSIER_MINIO_ENDPOINT")
	override(&s.Blob.Bucket, "DOSSIER_MINIO_BUCKET")
	override(&s.Blob.Prefix, "DOSSIER_MINIO_PREFIX")
	s.Blob.AccessKey = os.Getenv("DOSSIER_MINIO_ACCESS_KEY")
	s.Blob.SecretKey = os.Getenv("DOSSIER_MINIO_SECRET_KEY")
	if v := os.Getenv("DOSSIER_MINIO_USE_SSL"); v == "true" || v == "1" {
		s.Blob.UseSSL = true
	}

	if s.Blob.Backend == "" {
		s.Blob.Backend = BlobFS
	}
	switch s.Blob.Backend {
	case BlobNone, BlobFS, BlobMinio:
	default:
		return Settings{}, fmt.Errorf("unknown blob backend: %q", s.Blob.Backend)
	}

	return s, nil
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// readSettingsFile parses dossier.yaml alone. A missing file yields defaults.
func readSettingsFile(root string) (Settings, error) {
	s := Settings{Blob: BlobSettings{Backend: BlobFS}}

	data, err := os.ReadFile(filepath.Join(root, SettingsFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Settings{}, err
	}
	return s, nil
}
