package translit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores finished transliterations keyed by the Devanagari name.
type Cache interface {
	Get(ctx context.Context, name string) (string, bool)
	Set(ctx context.Context, name, english string)
}

// MemoryCache is a process-local cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[name]
	return v, ok
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, name, english string) {
	c.mu.Lock()
	c.entries[name] = english
	c.mu.Unlock()
}

// Len returns the number of cached names.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const redisKeyPrefix = "voterroll:translit:"

// RedisCache shares transliterations between runs and machines.
// Lookup errors are treated as misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the server at url (redis://host:port/db).
// A zero ttl keeps entries forever.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, name string) (string, bool) {
	v, err := c.client.Get(ctx, redisKeyPrefix+name).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, name, english string) {
	_ = c.client.Set(ctx, redisKeyPrefix+name, english, c.ttl).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
