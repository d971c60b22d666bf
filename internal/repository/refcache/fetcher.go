package refcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/mapping"
)

const keyPrefix = "mongoes:ref_cache:"

// DefaultTTL bounds how long a referenced document may be served stale.
const DefaultTTL = 5 * time.Minute

// store is the consumer interface for the reference cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedFetcher caches referenced documents in a key-value store.
// Cache failures never fail a fetch; they fall through to the inner fetcher.
type CachedFetcher struct {
	inner      mapping.Fetcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner mapping.Fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns the cached document or loads it through the inner fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, ref entity.Reference) (map[string]any, error) {
	key := cacheKey(ref.Collection, ref.ID)

	if doc, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return doc, nil
	}

	c.incCache("miss")

	doc, err := c.inner.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	if doc != nil {
		c.putToCache(ctx, key, doc)
	}
	return doc, nil
}

// Strategy reports the inner fetch strategy.
func (c *CachedFetcher) Strategy() string { return c.inner.Strategy() }

// Invalidate drops the cached copy of collection/id.
func (c *CachedFetcher) Invalidate(ctx context.Context, collection string, id any) {
	key := cacheKey(collection, id)
	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("Failed to invalidate cached reference", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(collection string, id any) string {
	return keyPrefix + collection + ":" + cast.ToString(id)
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) (map[string]any, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached reference", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("Failed to parse cached reference", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return doc, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, doc map[string]any) {
	data, err := json.Marshal(doc)
	if err != nil {
		c.logger.Warn("Failed to encode reference for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache reference", zap.String("key", key), zap.Error(err))
	}
}
