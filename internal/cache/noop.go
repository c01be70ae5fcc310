package cache

import (
	"context"
	"time"
)

// Noop is used when no cache is configured; every lookup misses
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

func (Noop) DeleteByPrefix(ctx context.Context, prefix string) error { return nil }
