// Package stowry reads formfill objects from a Stowry server using presigned
// GET requests. A bucket maps to the first path segment of the object key.
package stowry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	stowrygo "github.com/sagarc03/stowry-go"

	"github.com/sagarc03/formfill"
)

// presignExpiry is the lifetime in seconds of each presigned URL. URLs are
// used immediately, so it only needs to cover clock skew.
const presignExpiry = 900

// Config holds the server endpoint and signing keys.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Store fetches objects through presigned URLs.
type Store struct {
	client     *stowrygo.Client
	httpClient *http.Client
}

// New creates a Store. A nil httpClient uses a client with a 30s timeout.
func New(client *stowrygo.Client, httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Store{client: client, httpClient: httpClient}
}

// Dial creates a Store for cfg.
func Dial(cfg Config) *Store {
	return New(stowrygo.NewClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey), nil)
}

func objectKey(bucket, name string) string {
	return "/" + path.Join(bucket, name)
}

// Fetch downloads bucket/name. A 404 response returns an error wrapping
// formfill.ErrNotFound.
func (s *Store) Fetch(ctx context.Context, bucket, name string) ([]byte, error) {
	presignURL := s.client.PresignGet(objectKey(bucket, name), presignExpiry)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, presignURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stowry fetch %s/%s: %w", bucket, name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("stowry fetch %s/%s: %w", bucket, name, formfill.ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stowry fetch %s/%s: %s - %s", bucket, name, resp.Status, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stowry read %s/%s: %w", bucket, name, err)
	}

	return data, nil
}
