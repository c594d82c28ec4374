// Package cache keeps winner and per-email lookups in Redis so repeated
// reads skip Postgres. It is optional; the service runs without it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds submission rows in Redis, scoped to a reset generation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redisURL and fails if the server does not answer a PING.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Lookups are short; a small pool is enough for one API instance.
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewWithClient(client), nil
}

// NewWithClient wraps client with the default entry TTL. Tests pass a
// miniredis-backed client here.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: DefaultTTL}
}

// Ping is used by /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client; main registers it as a shutdown hook.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for integration test cleanup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
