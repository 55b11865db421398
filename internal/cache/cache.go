// Package cache is the key/value store behind the menu listing cache and the
// request throttle. Redis backs it in deployments; the in-memory store is used
// when no Redis address is configured.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Incr increments key and, when the key is new and ttl > 0, sets its expiry.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// TTL returns the remaining lifetime of key, 0 when it has none.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
	Close() error
}
