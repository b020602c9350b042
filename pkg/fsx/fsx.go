// Package fsx abstracts blob storage behind a small interface so services
// stay independent of the backing store.
package fsx

import (
	"context"
	"io"
)

// Metadata is attached to a stored object. Keys are lowercased by most
// backends; values must be short strings.
type Metadata map[string]string

// FileSystem is the write/read surface services depend on.
type FileSystem interface {
	// WriteFile stores data under path, replacing any existing object.
	// meta may be nil.
	WriteFile(ctx context.Context, path string, data []byte, meta Metadata) error
	// ReadFileStream opens the object for reading; the caller closes it.
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
	// DeleteFile removes the object. Deleting a missing object is not an
	// error.
	DeleteFile(ctx context.Context, path string) error
	// Join builds a storage path from segments.
	Join(parts ...string) string
}

// FileReader is the read-only subset for consumers that never write.
type FileReader interface {
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
}
