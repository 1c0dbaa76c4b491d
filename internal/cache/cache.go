package cache

import (
	"context"
	"time"
)

// BytesCache is a best-effort key/value cache. Callers treat every error as
// a miss.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
