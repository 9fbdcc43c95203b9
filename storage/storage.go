// Package storage selects and builds the configured object store backend.
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/filesystem"
	"github.com/sagarc03/formfill/gcs"
	"github.com/sagarc03/formfill/s3"
	"github.com/sagarc03/formfill/stowry"
	"github.com/sagarc03/formfill/supabase"
)

// Config holds the settings for every backend; only the block matching
// Backend is read.
type Config struct {
	// Backend is one of "gcs", "s3", "supabase", "stowry" or "filesystem".
	Backend string

	GCS      gcs.Config
	S3       s3.Config
	Supabase supabase.Config
	Stowry   stowry.Config
	// Root is the base directory of the filesystem backend.
	Root string
}

// Open builds the configured backend. The returned cleanup function should
// be called once the store is no longer used.
func Open(ctx context.Context, cfg Config) (formfill.ObjectStore, func(), error) {
	switch cfg.Backend {
	case "gcs":
		return openGCS(ctx, cfg.GCS)
	case "s3":
		return openS3(ctx, cfg.S3)
	case "supabase":
		return openSupabase(cfg.Supabase)
	case "stowry":
		return stowry.Dial(cfg.Stowry), func() {}, nil
	case "filesystem":
		return openFilesystem(cfg.Root)
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func openGCS(ctx context.Context, cfg gcs.Config) (formfill.ObjectStore, func(), error) {
	store, err := gcs.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open gcs: %w", err)
	}

	cleanup := func() {
		_ = store.Close()
	}

	return store, cleanup, nil
}

func openS3(ctx context.Context, cfg s3.Config) (formfill.ObjectStore, func(), error) {
	store, err := s3.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open s3: %w", err)
	}
	return store, func() {}, nil
}

func openSupabase(cfg supabase.Config) (formfill.ObjectStore, func(), error) {
	store, err := supabase.Dial(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open supabase: %w", err)
	}
	return store, func() {}, nil
}

func openFilesystem(dir string) (formfill.ObjectStore, func(), error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("open filesystem: %w: root directory is empty", formfill.ErrConfig)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open filesystem root: %w", err)
	}

	cleanup := func() {
		_ = root.Close()
	}

	return filesystem.NewFileStorage(root), cleanup, nil
}
