package storage

import (
	"context"
	"io"
)

// Uploader archives answer audio. The returned path is opaque to callers and
// is only ever handed back to Opener.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Opener interface {
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
}

// ObjectName lays audio out per interview: answers/{interview}/{name}.
func ObjectName(interviewID, name string) string {
	return "answers/" + interviewID + "/" + name
}
