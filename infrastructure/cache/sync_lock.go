package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SyncLock serializes sync runs per account/post. Backed by Redis SET NX with
// a TTL so a crashed worker cannot hold a lock forever; falls back to an
// in-process mutex map when Redis is unavailable.
type SyncLock struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]time.Time
}

func NewSyncLock(client *redis.Client) *SyncLock {
	return &SyncLock{client: client, local: make(map[string]time.Time)}
}

// Acquire returns false when another run already holds the key.
func (l *SyncLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.client != nil {
		return l.client.SetNX(ctx, "synclock:"+key, 1, ttl).Result()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, held := l.local[key]; held && time.Now().Before(exp) {
		return false, nil
	}
	l.local[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *SyncLock) Release(ctx context.Context, key string) error {
	if l.client != nil {
		return l.client.Del(ctx, "synclock:"+key).Err()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.local, key)
	return nil
}
