// Package supabase reads formfill objects from Supabase Storage.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/sagarc03/formfill"
)

// Config holds the project URL and API key.
type Config struct {
	URL string
	Key string
}

// Store downloads objects with the storage client.
type Store struct {
	client *storage_go.Client
}

// New wraps an existing storage client.
func New(client *storage_go.Client) *Store {
	return &Store{client: client}
}

// Dial creates a Supabase client for cfg.URL and uses its storage client.
func Dial(cfg Config) (*Store, error) {
	client, err := supa.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return New(client.Storage), nil
}

type download struct {
	data []byte
	err  error
}

// Fetch downloads bucket/name. The storage client takes no context, so the
// download runs in its own goroutine and Fetch returns as soon as ctx is done.
func (s *Store) Fetch(ctx context.Context, bucket, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan download, 1)
	go func() {
		data, err := s.client.DownloadFile(bucket, name)
		done <- download{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("supabase fetch %s/%s: %w", bucket, name, ctx.Err())
	case res := <-done:
		if res.err != nil {
			if isNotFound(res.err) {
				return nil, fmt.Errorf("supabase fetch %s/%s: %w", bucket, name, formfill.ErrNotFound)
			}
			return nil, fmt.Errorf("supabase fetch %s/%s: %w", bucket, name, res.err)
		}
		return res.data, nil
	}
}

// isNotFound reports whether err is a storage API "not found" response. The
// API reports the status in the body, sometimes only through the message.
func isNotFound(err error) bool {
	var storageErr *storage_go.StorageError
	if !errors.As(err, &storageErr) {
		return false
	}
	if storageErr.Status == http.StatusNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(storageErr.Message), "not found")
}
