package sentcache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSConfig captures the object holding the cache.
type GCSConfig struct {
	Bucket string
	Object string
}

// GCSStore keeps the cache in a Google Cloud Storage object, which survives
// ephemeral CI build machines.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCS creates a GCS-backed store.
func NewGCS(client *storage.Client, cfg GCSConfig) (*GCSStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.Object == "" {
		return nil, fmt.Errorf("object name is required")
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, object: cfg.Object}, nil
}

// URI returns the gs:// location of the cache object.
func (s *GCSStore) URI() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}

// Load downloads and decodes the cache object.
func (s *GCSStore) Load(ctx context.Context) ([]string, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open cache object: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read cache object: %w", err)
	}
	return Decode(data)
}

// Save uploads the full list, replacing the object.
func (s *GCSStore) Save(ctx context.Context, urls []string) error {
	data, err := Encode(urls)
	if err != nil {
		return err
	}
	writer := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return fmt.Errorf("write cache object: %w (close writer: %v)", err, closeErr)
		}
		return fmt.Errorf("write cache object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}
