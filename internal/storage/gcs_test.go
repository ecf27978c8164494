package storage

import (
	"context"
	"testing"
)

// Paths are checked before the client is touched.
func TestGCSOpenStaysInBucket(t *testing.T) {
	store := &GCSStore{bucket: "answers"}
	for _, p := range []string{
		"gs://other-bucket/answers/iv/a.webm",
		"gs://answers",
		"http://answers/a.webm",
	} {
		if _, err := store.Open(context.Background(), p); err == nil {
			t.Errorf("expected %q to be refused", p)
		}
	}
}
