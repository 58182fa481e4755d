package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"cnpj-data-api/internal/metrics"
)

// Cache is a thin redis key/value wrapper. An empty REDIS_URL or an
// unreachable server disables it; every operation then degrades to a miss so
// the read API keeps working without redis.
//
// Metrics is optional. When set, every lookup records a hit or a miss per
// key, disabled-cache lookups included.
type Cache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration

	Metrics *metrics.Store
}

func New(redisURL string, ttlSeconds int) *Cache {
	c := &Cache{ttl: time.Duration(ttlSeconds) * time.Second}

	if redisURL == "" {
		log.Printf("cache: disabled, empty redis url")
		return c
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("cache: disabled, bad redis url: %v", err)
		return c
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("cache: disabled, redis unreachable: %v", err)
		_ = client.Close()
		return c
	}

	c.client = client
	c.enabled = true
	log.Printf("cache: enabled")
	return c
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.enabled {
		c.Metrics.Increment(metrics.CacheMissesTotal)
		return "", false
	}
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		c.Metrics.Increment(metrics.CacheMissesTotal)
		return "", false
	}
	c.Metrics.Increment(metrics.CacheHitsTotal)
	return value, true
}

func (c *Cache) Set(ctx context.Context, key, value string) {
	if !c.enabled {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

func (c *Cache) GetMany(ctx context.Context, keys []string) map[string]string {
	if !c.enabled || len(keys) == 0 {
		c.Metrics.Add(metrics.CacheMissesTotal, int64(len(keys)))
		return map[string]string{}
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("cache: mget failed: %v", err)
		c.Metrics.Add(metrics.CacheMissesTotal, int64(len(keys)))
		return map[string]string{}
	}

	found := make(map[string]string, len(keys))
	for i, v := range values {
		if s, ok := v.(string); ok {
			found[keys[i]] = s
		}
	}
	c.Metrics.Add(metrics.CacheHitsTotal, int64(len(found)))
	c.Metrics.Add(metrics.CacheMissesTotal, int64(len(keys)-len(found)))
	return found
}

func (c *Cache) SetMany(ctx context.Context, entries map[string]string) {
	if !c.enabled || len(entries) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for key, value := range entries {
		pipe.Set(ctx, key, value, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("cache: pipeline set failed: %v", err)
	}
}

// Key builds the cache key for an 8- or 14-digit CNPJ.
func Key(cnpj string) string {
	return "cnpj:" + cnpj
}
