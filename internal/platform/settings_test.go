package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DOSSIER_ID_STRATEGY", "DOSSIER_BLOB", "DOSSIER_MINIO_ENDPOINT", "DOSSIER_MINIO_BUCKET",
		"DOSSIER_MINIO_PREFIX", "DOSSIER_MINIO_ACCESS_KEY", "DOSSIER_MINIO_SECRET_KEY", "DOSSIER_MINIO_USE_SSL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("Defaults Without Files", func(t *testing.T) {
		clearEnv(t)
		s, err := LoadSettings(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, BlobFS, s.Blob.Backend)
		assert.Empty(t, s.IDStrategy)
		assert.Nil(t, s.Gitless)
	})

	t.Run("Reads Yaml", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		yml := "id_strategy: content\ngitless: true\nblob:\n  backend: minio\n  endpoint: localhost:9000\n  bucket: cases\n  use_ssl: true\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte(yml), 0644))

		s, err := LoadSettings(dir)
		require.NoError(t, err)
		assert.Equal(t, "content", s.IDStrategy)
		require.NotNil(t, s.Gitless)
		assert.True(t, *s.Gitless)
		assert.Equal(t, BlobMinio, s.Blob.Backend)
		assert.Equal(t, "localhost:9000", s.Blob.Endpoint)
		assert.Equal(t, "cases", s.Blob.Bucket)
		assert.True(t, s.Blob.UseSSL)
	})

	t.Run("Environment Overrides Yaml", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte("blob:\n  backend: minio\n  bucket: a\n"), 0644))
		t.Setenv("DOSSIER_MINIO_BUCKET", "b")
		t.Setenv("DOSSIER_MINIO_ACCESS_KEY", "key")

		s, err := LoadSettings(dir)
		require.NoError(t, err)
		assert.Equal(t, "b", s.Blob.Bucket)
		assert.Equal(t, "key", s.Blob.AccessKey)
	})

	t.Run("Dotenv Fills Unset Variables", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOSSIER_MINIO_SECRET_KEY=from-dotenv\n"), 0644))
		// godotenv.Load does not override variables that are already set,
		// and t.Setenv("", ...) counts as set, so unset it first.
		os.Unsetenv("DOSSIER_MINIO_SECRET_KEY")

		s, err := LoadSettings(dir)
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", s.Blob.SecretKey)
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOSSIER_BLOB", "ftp")
		_, err := LoadSettings(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("Invalid Yaml", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte("blob: [\n"), 0644))
		_, err := LoadSettings(dir)
		assert.Error(t, err)
	})
}
