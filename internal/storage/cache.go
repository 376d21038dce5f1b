package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/readiness-engine/internal/models"
)

const issuedKeyPrefix = "readiness:issued:"

// RedisCache stores issued scenarios as JSON with a TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Put implements IssuedCache
func (c *RedisCache) Put(ctx context.Context, sc models.Scenario) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := c.client.Set(ctx, issuedKeyPrefix+sc.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scenario %s: %w", sc.ID, err)
	}
	return nil
}

// Get implements IssuedCache
func (c *RedisCache) Get(ctx context.Context, id string) (models.Scenario, error) {
	data, err := c.client.Get(ctx, issuedKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Scenario{}, ErrNotFound
	}
	if err != nil {
		return models.Scenario{}, fmt.Errorf("failed to read scenario %s: %w", id, err)
	}

	var sc models.Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return models.Scenario{}, fmt.Errorf("failed to unmarshal scenario %s: %w", id, err)
	}
	return sc, nil
}

// Ping checks Redis connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	scenario  models.Scenario
	expiresAt time.Time
}

// MemoryCache is an in-process IssuedCache used when Redis is not configured
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put implements IssuedCache
func (c *MemoryCache) Put(_ context.Context, sc models.Scenario) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)
	c.entries[sc.ID] = memoryEntry{scenario: sc.Clone(), expiresAt: now.Add(c.ttl)}
	return nil
}

// Get implements IssuedCache
func (c *MemoryCache) Get(_ context.Context, id string) (models.Scenario, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return models.Scenario{}, ErrNotFound
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, id)
		return models.Scenario{}, ErrNotFound
	}
	return e.scenario.Clone(), nil
}

// TTL returns how long entries are kept
func (c *MemoryCache) TTL() time.Duration {
	return c.ttl
}

// Len returns the number of entries held, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// sweep drops expired entries. Caller holds the write lock.
func (c *MemoryCache) sweep(now time.Time) {
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Ping implements IssuedCache
func (c *MemoryCache) Ping(context.Context) error { return nil }

// Close implements IssuedCache
func (c *MemoryCache) Close() error { return nil }
