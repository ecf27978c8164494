package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCSStore keeps answer audio private in one bucket; paths look like
// gs://bucket/object.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: c, bucket: bucket}, nil
}

func (u *GCSStore) Close() error { return u.client.Close() }

func (u *GCSStore) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	w := u.client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", u.bucket, objectName), nil
}

func (u *GCSStore) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	rest, ok := strings.CutPrefix(storedPath, "gs://")
	if !ok {
		return nil, fmt.Errorf("not a gcs path: %q", storedPath)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || object == "" {
		return nil, fmt.Errorf("not a gcs object path: %q", storedPath)
	}
	if bucket != u.bucket {
		return nil, fmt.Errorf("gcs path %q is outside bucket %q", storedPath, u.bucket)
	}
	return u.client.Bucket(bucket).Object(object).NewReader(ctx)
}
