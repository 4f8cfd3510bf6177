package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientName identifies the service in CLIENT LIST.
const ClientName = "jointledger"

// Option adjusts the parsed client options.
type Option func(*redis.Options)

// WithPoolSize caps the connection pool.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.DialTimeout = d
		}
	}
}

// NewClient creates a new Redis client and verifies it can reach the server.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	options.ClientName = ClientName
	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
