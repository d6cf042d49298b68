package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the minimal interface for object storage backends.
// Used for archived report exports and officer avatars.
type Storage interface {
	// Put stores an object at the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key. Returns nil if it doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for an object.
	GetURL(key string) string

	// PresignGet returns a time-limited download URL for an object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
