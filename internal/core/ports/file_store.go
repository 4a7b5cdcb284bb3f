package ports

import (
	"context"
	"io"
)

// File is a stored binary attachment. Callers must close Content.
type File struct {
	Filename    string
	ContentType string
	Length      int64
	Content     io.ReadCloser
}

// FileStore keeps at most one binary per filename within a bucket.
type FileStore interface {
	// Save replaces every file stored under filename.
	Save(ctx context.Context, bucket, filename string, r io.Reader, contentType string) error
	// Fetch returns domain.ErrFileNotFound when nothing is stored and
	// domain.ErrMultipleFiles when the store holds more than one match.
	Fetch(ctx context.Context, bucket, filename string) (*File, error)
}

type FileService interface {
	Upload(ctx context.Context, id string, r io.Reader, contentType string) error
	Download(ctx context.Context, id string) (*File, error)
}
