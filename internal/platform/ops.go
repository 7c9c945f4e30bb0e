package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/dossier/pkg/adapters/fs"
	"github.com/aretw0/dossier/pkg/core"
)

// Init opens the document repository at uri and runs its initialization.
// An injected repository (WithRepository) is returned as is.
func Init(uri string, opts ...Option) (core.Repository, error) {
	return initRepository(uri, applyOptions(opts))
}

func initRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	repo, err := initFS(uri, o)
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS resolves the vault path and builds the filesystem repository.
func initFS(path string, o *options) (*fs.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	gitless, _ := o.config["gitless"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	isReadOnly, _ := o.config["read_only"].(bool)

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}
	bypassSafety := isReadOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolvedPath := ResolveVaultPath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolvedPath)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolvedPath)
		}
	}

	if systemDir == "" {
		systemDir = DefaultSystemDir
	}

	_, explicit := o.config["gitless"]
	if !explicit {
		settings, err := readSettingsFile(resolvedPath)
		if err != nil {
			return nil, err
		}
		if settings.Gitless != nil {
			gitless = *settings.Gitless
			explicit = true
		}
	}

	// Without an explicit choice, an existing vault keeps its mode and a
	// fresh one is versioned.
	if !explicit {
		_, gitErr := os.Stat(filepath.Join(resolvedPath, ".git"))
		_, sysErr := os.Stat(filepath.Join(resolvedPath, systemDir))
		switch {
		case gitErr == nil:
			gitless = false
		case autoInit:
			gitless = sysErr == nil
		default:
			gitless = true
		}
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	return fs.NewRepository(fs.Config{
		Path:      resolvedPath,
		AutoInit:  autoInit,
		Gitless:   gitless,
		MustExist: mustExist || (!autoInit && !useTemp),
		ReadOnly:  isReadOnly,
		Logger:    o.logger,
		SystemDir: systemDir,
	}), nil
}

// Sync pulls and pushes the vault at uri.
func Sync(uri string, opts ...Option) error {
	o := applyOptions(opts)

	repo := o.repository
	if repo == nil {
		o.config["must_exist"] = true
		fsRepo, err := initFS(uri, o)
		if err != nil {
			return err
		}
		repo = fsRepo
	}

	syncable, ok := repo.(core.Syncable)
	if !ok {
		return fmt.Errorf("repository does not support synchronization")
	}
	return syncable.Sync(context.Background())
}
