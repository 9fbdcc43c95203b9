// Package filesystem provides a local directory backend for formfill.
// Each bucket is a subdirectory of the root and objects are files inside it.
// It is meant for local development and tests.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagarc03/formfill"
)

// Store reads objects from a directory tree.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Fetch reads bucket/name. Returns formfill.ErrNotFound if the bucket
// directory or the file does not exist.
func (s *Store) Fetch(ctx context.Context, bucket, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if bucket == "" || strings.Contains(bucket, "/") || !formfill.IsValidObjectName(bucket) {
		return nil, fmt.Errorf("fetch: %w: invalid bucket %q", formfill.ErrInvalidInput, bucket)
	}
	if !formfill.IsValidObjectName(name) {
		return nil, fmt.Errorf("fetch: %w: invalid object name %q", formfill.ErrInvalidInput, name)
	}

	path := filepath.Join(bucket, filepath.FromSlash(name))

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("fetch %s/%s: %w", bucket, name, formfill.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fetch %s/%s: %w", bucket, name, formfill.ErrNotFound)
	}

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return nil, fmt.Errorf("could not read file contents: %w", err)
	}

	return data, nil
}

// Objects lists the object names stored in bucket, walking subdirectories.
func (s *Store) Objects(ctx context.Context, bucket string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string

	err := fs.WalkDir(s.root.FS(), bucket, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		names = append(names, strings.TrimPrefix(path, bucket+"/"))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", bucket, formfill.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return names, nil
}
