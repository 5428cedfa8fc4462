package database

import (
	"context"
	"fmt"
	"time"

	"event-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil when no URL is configured; callers treat that as "feature off".
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	if config.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	if err := RedisHealthCheck(context.Background(), client); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// RedisHealthCheck pings with a short deadline
func RedisHealthCheck(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}
