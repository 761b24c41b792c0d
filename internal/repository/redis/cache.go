package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	catalogCachePrefix = "catalog:"
	productCachePrefix = "catalog:product:"
	categoryCacheKey   = "catalog:categories"
	cacheName          = "catalog"
)

// ProductCache decorates a catalog with read-through caching of single
// product and category lookups. Searches always go to the backing catalog.
type ProductCache struct {
	domain.CatalogService
	client  *Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewProductCache creates a caching catalog around next
func NewProductCache(next domain.CatalogService, client *Client, ttl time.Duration, metrics *observability.Metrics) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{CatalogService: next, client: client, ttl: ttl, metrics: metrics}
}

func (c *ProductCache) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	key := productCachePrefix + id

	var cached domain.Product
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := c.CatalogService.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, product)
	return product, nil
}

func (c *ProductCache) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if c.get(ctx, categoryCacheKey, &cached) {
		return cached, nil
	}

	categories, err := c.CatalogService.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, categoryCacheKey, categories)
	return categories, nil
}

// Invalidate drops a cached product after stock or price changes
func (c *ProductCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productCachePrefix + id
	}
	return c.client.rdb.Del(ctx, keys...).Err()
}

// Flush drops every catalog entry and returns how many keys went
func (c *ProductCache) Flush(ctx context.Context) (int64, error) {
	var cursor uint64
	var deleted int64

	for {
		keys, next, err := c.client.rdb.Scan(ctx, cursor, catalogCachePrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan catalog keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete catalog keys: %w", err)
			}
			deleted += n
		}
		if cursor = next; cursor == 0 {
			return deleted, nil
		}
	}
}

// get reports a hit; Redis failures count as misses
func (c *ProductCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		}
		c.miss()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cache entry")
		c.miss()
		return false
	}
	if c.metrics != nil {
		c.metrics.IncrCacheHit(cacheName)
	}
	return true
}

func (c *ProductCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	if err := c.client.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
	}
}

func (c *ProductCache) miss() {
	if c.metrics != nil {
		c.metrics.IncrCacheMiss(cacheName)
	}
}
