package main

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/cache"
	"github.com/MikeMC777/littlelemon/internal/menu"
	"github.com/MikeMC777/littlelemon/internal/metrics"
)

const menuVersionKey = "menu:version"

// menuCache stores rendered menu listings. Entries are keyed by a version
// counter that every category or menu write bumps, so stale pages are never
// read again and simply expire.
type menuCache struct {
	store cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

// newMenuCache returns nil when caching is disabled; a nil *menuCache is a no-op.
func newMenuCache(store cache.Store, ttl time.Duration, log *zap.Logger) *menuCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &menuCache{store: store, ttl: ttl, log: log}
}

func (m *menuCache) key(ctx context.Context, q menu.Query) (string, error) {
	ver := "0"
	b, ok, err := m.store.Get(ctx, menuVersionKey)
	if err != nil {
		return "", err
	}
	if ok {
		ver = string(b)
	}
	return "menu:list:" + ver + ":" + q.CacheKey(), nil
}

// get returns the cached listing for q and the key to store it under on a miss.
func (m *menuCache) get(ctx context.Context, q menu.Query) (*menu.ListResponse, string) {
	if m == nil {
		return nil, ""
	}
	key, err := m.key(ctx, q)
	if err != nil {
		m.log.Warn("menu cache: version lookup", zap.Error(err))
		return nil, ""
	}
	b, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		metrics.MenuCacheLookups.WithLabelValues("miss").Inc()
		return nil, key
	}
	var resp menu.ListResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		metrics.MenuCacheLookups.WithLabelValues("miss").Inc()
		return nil, key
	}
	metrics.MenuCacheLookups.WithLabelValues("hit").Inc()
	return &resp, key
}

func (m *menuCache) put(ctx context.Context, key string, resp menu.ListResponse) {
	if m == nil || key == "" {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := m.store.Set(ctx, key, b, m.ttl); err != nil {
		m.log.Warn("menu cache: set", zap.Error(err))
	}
}

func (m *menuCache) invalidate(ctx context.Context) {
	if m == nil {
		return
	}
	if _, err := m.store.Incr(ctx, menuVersionKey, 0); err != nil {
		m.log.Warn("menu cache: invalidate", zap.Error(err))
	}
}
