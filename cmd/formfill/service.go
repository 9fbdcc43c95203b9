package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/config"
	"github.com/sagarc03/formfill/pdfform"
	"github.com/sagarc03/formfill/storage"
)

// newService builds the fill pipeline from cfg. The returned cleanup
// function releases the object store.
func newService(ctx context.Context, cfg *config.Config) (*formfill.Service, func(), error) {
	store, cleanup, err := storage.Open(ctx, cfg.Storage.Open())
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	filler, err := pdfform.NewFiller(cfg.PDF.ConfigDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create filler: %w", err)
	}

	service, err := formfill.NewService(store, filler, cfg.Service())
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	slog.Debug("storage ready",
		"backend", cfg.Storage.Backend,
		"bucket", cfg.Storage.Bucket,
		"template", cfg.Template.PDF,
		"schema", cfg.Template.Schema,
	)

	return service, cleanup, nil
}
