package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// FileStorage keeps generated documents such as archived payslips.
type FileStorage interface {
	// Put writes the object at key, replacing any previous version, and
	// returns the cleaned key.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Open returns the object at key or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	// URL returns the public location of key.
	URL(key string) string

	Exists(ctx context.Context, key string) (bool, error)
}
