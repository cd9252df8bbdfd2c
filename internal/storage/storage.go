// Package storage hides the blob store behind a small interface. Keys are
// opaque; the catalog only ever stores, streams, and removes whole blobs.
package storage

import (
	"context"
	"io"
	"time"
)

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock
type Store interface {
	// Save streams r into the blob identified by key. A partial write
	// never leaves a readable blob behind.
	Save(ctx context.Context, key string, r io.Reader) error
	// Open streams the blob back. Callers must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the blob. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// SignedURL issues a time-limited capability URL for downloading the
	// blob under the given filename.
	SignedURL(key, fileName string, ttl time.Duration) (string, error)
}
