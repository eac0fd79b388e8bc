package repository

import (
	"context"
	"time"
)

// ISyncLock serializes sync runs per account/post. Acquire returns false when
// another run already holds the key.
type ISyncLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
