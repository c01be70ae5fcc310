package services

import (
	"context"
	"io"
)

// BlobStore is the content store for file bytes. Keys are opaque to the
// store; the drive service derives them deterministically.
type BlobStore interface {
	// Put, Copy and Rename never overwrite: a taken key yields a
	// domain.ConflictError, and Put reports it before reading r
	Put(ctx context.Context, key string, r io.Reader) error
	// Get returns domain.ErrNotFound when the key does not exist
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Rename(ctx context.Context, srcKey, dstKey string) error
}
