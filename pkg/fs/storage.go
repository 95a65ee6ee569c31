package fs

import (
	"context"
	"io"
)

// Storage is a file system interface to host run artifacts: the generated
// feed document and optionally archived media files.
type Storage interface {
	// Create will create a new file from reader
	Create(ctx context.Context, name string, reader io.Reader) (int64, error)

	// Size returns the object's size in bytes
	Size(ctx context.Context, name string) (int64, error)

	// Delete deletes the file
	Delete(ctx context.Context, name string) error
}
