// Package gcs reads formfill objects from Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/sagarc03/formfill"
)

// Config holds the client settings for the GCS backend.
type Config struct {
	// ProjectID is billed for requests as the quota project. Ignored when
	// Anonymous is set.
	ProjectID string
	// Endpoint overrides the JSON API base URL, e.g.
	// "http://localhost:4443/storage/v1/" for an emulator.
	Endpoint string
	// Anonymous disables credential lookup. Needed for emulators.
	Anonymous bool
}

// Store fetches objects through a storage.Client.
type Store struct {
	client *storage.Client
}

// New wraps an existing client.
func New(client *storage.Client) *Store {
	return &Store{client: client}
}

// Dial creates a client from cfg using Application Default Credentials
// unless cfg.Anonymous is set. Callers must Close the returned Store.
func Dial(ctx context.Context, cfg Config) (*Store, error) {
	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return New(client), nil
}

func clientOptions(cfg Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		// emulators only serve downloads through the JSON API
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), storage.WithJSONReads())
	}
	if cfg.Anonymous {
		return append(opts, option.WithoutAuthentication())
	}
	if cfg.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cfg.ProjectID))
	}
	return opts
}

// Fetch downloads bucket/name. A missing bucket or object returns an error
// wrapping formfill.ErrNotFound.
func (s *Store) Fetch(ctx context.Context, bucket, name string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("gcs fetch %s/%s: %w", bucket, name, formfill.ErrNotFound)
		}
		return nil, fmt.Errorf("gcs fetch %s/%s: %w", bucket, name, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s/%s: %w", bucket, name, err)
	}

	return data, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
