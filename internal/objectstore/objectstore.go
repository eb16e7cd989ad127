// Package objectstore moves receipt images in and out of Google Cloud
// Storage. Application Default Credentials are assumed.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single image upload.
const uploadTimeout = 2 * time.Minute

// ImageStore is the storage surface the scan worker needs.
type ImageStore interface {
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
	Upload(ctx context.Context, bucket, object string, data []byte) (gcsURI string, err error)
}

// GCSImageStore implements ImageStore on a shared storage client.
type GCSImageStore struct {
	client *storage.Client
}

// NewGCSImageStore creates the store with its own client.
func NewGCSImageStore(ctx context.Context) (*GCSImageStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSImageStore: create storage client: %w", err)
	}
	return &GCSImageStore{client: client}, nil
}

func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

// Fetch downloads the object bytes behind a gs:// URI.
func (s *GCSImageStore) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := SplitGCSURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read GCS object: %w", err)
	}
	return data, nil
}

// Upload writes data under the object name and returns its gs:// URI.
func (s *GCSImageStore) Upload(ctx context.Context, bucket, object string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, object), nil
}

// SplitGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func SplitGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	parts := strings.SplitN(strings.TrimPrefix(gcsURI, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// ObjectBase returns the file name component of a gs:// URI, best effort.
func ObjectBase(gcsURI string) string {
	_, object, err := SplitGCSURI(gcsURI)
	if err != nil {
		return gcsURI
	}
	return path.Base(object)
}
