package services

import (
	"context"
	"time"
)

// Cache memoizes read-heavy listings. It is never relied upon for
// correctness: writers invalidate, readers fall back to the store on any miss or error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
