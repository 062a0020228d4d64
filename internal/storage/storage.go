package storage

import (
	"context"
	"io"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, file io.Reader) error

	// Delete removes a file at the given path
	Delete(ctx context.Context, path string) error

	// URL returns where the stored file can be found
	URL(path string) string
}
