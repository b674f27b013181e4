// Package rediscache keeps rendered pending work queues in Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

const (
	DefaultPrefix = "sigah:pending-work:"
	DefaultTTL    = 5 * time.Minute
)

var _ ports.PendingWorkCache = (*PendingWorkCache)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

type PendingWorkCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPendingWorkCache connects and pings the server.
func NewPendingWorkCache(ctx context.Context, cfg Config) (*PendingWorkCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return newPendingWorkCache(client, cfg.Prefix, cfg.TTL), nil
}

func newPendingWorkCache(client *redis.Client, prefix string, ttl time.Duration) *PendingWorkCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PendingWorkCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *PendingWorkCache) key(role string) string {
	return c.prefix + role
}

func (c *PendingWorkCache) Get(ctx context.Context, role string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(role)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get pending work for %s: %w", role, err)
	}
	return data, true, nil
}

func (c *PendingWorkCache) Set(ctx context.Context, role string, data []byte) error {
	if err := c.client.Set(ctx, c.key(role), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set pending work for %s: %w", role, err)
	}
	return nil
}

// Invalidate drops every role queue under the prefix.
func (c *PendingWorkCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan pending work keys: %w", err)
		}
		if len(keys) > 0 {
			if err = c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete pending work keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *PendingWorkCache) Close() error {
	return c.client.Close()
}
