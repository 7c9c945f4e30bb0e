// Package minio stores evidence attachments on S3-compatible object storage.
package minio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aretw0/introspection"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultBucket is used when Config.Bucket is empty.
const DefaultBucket = "dossier"

var (
	ErrNoEndpoint = errors.New("minio endpoint is required")
	ErrUnsafeKey  = errors.New("attachment path escapes the bucket prefix")
)

// Config holds the connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Prefix is prepended to every object key.
	Prefix string
	Logger *slog.Logger
}

// BlobStore implements evidence.BlobStore. Object keys are the attachment
// storage paths, optionally under Prefix.
type BlobStore struct {
	client *miniogo.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// New connects to the endpoint and creates the bucket if it does not exist.
func New(ctx context.Context, cfg Config) (*BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: cfg.Logger,
	}, nil
}

// Put uploads data at the storage path.
func (s *BlobStore) Put(ctx context.Context, storagePath, mimeType string, data []byte) error {
	key, err := ObjectKey(s.prefix, storagePath)
	if err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
		ContentType:  mimeType,
		UserMetadata: map[string]string{"sha256": checksum(data)},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if s.logger != nil {
		s.logger.Debug("attachment uploaded", "bucket", s.bucket, "key", key, "size", len(data))
	}
	return nil
}

// Remove deletes the object at the storage path.
func (s *BlobStore) Remove(ctx context.Context, storagePath string) error {
	key, err := ObjectKey(s.prefix, storagePath)
	if err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, key, miniogo.RemoveObjectOptions{})
}

// Get opens the object at the storage path.
func (s *BlobStore) Get(ctx context.Context, storagePath string) (io.ReadCloser, int64, error) {
	key, err := ObjectKey(s.prefix, storagePath)
	if err != nil {
		return nil, 0, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, 0, err
	}
	return obj, info.Size, nil
}

// Bucket returns the bucket name.
func (s *BlobStore) Bucket() string {
	return s.bucket
}

// ObjectKey maps a storage path to an object key under prefix.
func ObjectKey(prefix, storagePath string) (string, error) {
	clean := path.Clean("/" + storagePath)[1:]
	if clean == "" || clean != strings.TrimPrefix(storagePath, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeKey, storagePath)
	}
	if prefix == "" {
		return clean, nil
	}
	return path.Join(prefix, clean), nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BlobStoreState exposes internal state for observability.
type BlobStoreState struct {
	Endpoint string `json:"endpoint"`
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix"`
}

// State implements introspection.Introspectable.
func (s *BlobStore) State() any {
	return BlobStoreState{
		Endpoint: s.client.EndpointURL().Host,
		Bucket:   s.bucket,
		Prefix:   s.prefix,
	}
}

// ComponentType implements introspection.Component.
func (s *BlobStore) ComponentType() string {
	return "blobstore"
}

var _ introspection.Introspectable = (*BlobStore)(nil)
var _ introspection.Component = (*BlobStore)(nil)
