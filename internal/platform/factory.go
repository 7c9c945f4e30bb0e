package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/dossier/pkg/adapters/fs"
	"github.com/aretw0/dossier/pkg/adapters/minio"
	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
)

// Vault bundles the components that operate on one case vault.
type Vault struct {
	// Root is the resolved vault directory, empty for injected repositories.
	Root     string
	Repo     core.Repository
	Records  *evidence.Repository
	Ingestor *evidence.Ingestor
	Blobs    evidence.BlobStore
	Settings Settings
}

// Open initializes the vault at uri and wires the evidence pipeline:
//
//	vault, err := platform.Open("./case", platform.WithAutoInit(true))
//	batch, err := vault.Ingestor.Ingest(ctx, entity, files)
func Open(ctx context.Context, uri string, opts ...Option) (*Vault, error) {
	o := applyOptions(opts)

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}

	v := &Vault{Repo: repo}
	if fsRepo, ok := repo.(*fs.Repository); ok {
		v.Root = fsRepo.Path
	}

	if v.Root != "" {
		if v.Settings, err = LoadSettings(v.Root); err != nil {
			return nil, err
		}
	} else {
		v.Settings = Settings{Blob: BlobSettings{Backend: BlobNone}}
	}

	strategy := v.Settings.IDStrategy
	if s, ok := o.config["id_strategy"].(string); ok && s != "" {
		strategy = s
	}
	newID, err := evidence.ParseIDStrategy(strategy)
	if err != nil {
		return nil, err
	}

	v.Blobs = o.blobs
	if v.Blobs == nil {
		if v.Blobs, err = openBlobStore(ctx, repo, v.Settings.Blob, o.logger); err != nil {
			return nil, err
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	v.Records = evidence.NewRepository(repo)
	ingestOpts := []evidence.IngestorOption{
		evidence.WithIDGenerator(newID),
		evidence.WithLogger(logger),
	}
	if v.Blobs != nil {
		ingestOpts = append(ingestOpts, evidence.WithBlobStore(v.Blobs))
	}
	if o.confirmer != nil {
		ingestOpts = append(ingestOpts, evidence.WithConfirmer(o.confirmer))
	}
	if o.onUpdated != nil {
		ingestOpts = append(ingestOpts, evidence.WithOnUpdated(o.onUpdated))
	}
	v.Ingestor = evidence.NewIngestor(v.Records, ingestOpts...)

	return v, nil
}

func openBlobStore(ctx context.Context, repo core.Repository, s BlobSettings, logger *slog.Logger) (evidence.BlobStore, error) {
	switch s.Backend {
	case BlobNone:
		return nil, nil
	case BlobMinio:
		store, err := minio.New(ctx, minio.Config{
			Endpoint:  s.Endpoint,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
			UseSSL:    s.UseSSL,
			Bucket:    s.Bucket,
			Prefix:    s.Prefix,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		fsRepo, ok := repo.(*fs.Repository)
		if !ok {
			return nil, fmt.Errorf("blob backend %q needs a filesystem vault", s.Backend)
		}
		return fsRepo.Attachments(), nil
	}
}
