// Package rds provides a thin Redis client used for best-effort caching
package rds

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures redis connectivity
type Config struct {
	Addr string
	DB   int
}

// RDS wraps a go-redis client behind the cache seam
type RDS struct {
	c *redis.Client
}

// Open creates a client and verifies connectivity
func Open(ctx context.Context, cfg Config) (*RDS, error) {
	c := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &RDS{c: c}, nil
}

// Get returns the value for key, miss is (_, false, nil)
func (r *RDS) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.c.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key with a ttl, ttl<=0 means no expiry
func (r *RDS) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// Ping reports connectivity
func (r *RDS) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close closes the underlying client
func (r *RDS) Close() error { return r.c.Close() }
