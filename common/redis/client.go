package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/rekk2/event-registration/common/config"

	"github.com/go-redis/redis/v8"
)

type Client = redis.Client

// NewRedisClient builds a client without dialing.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Connect builds a client and pings it; the client is closed again when the ping fails.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := NewRedisClient(cfg)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}
	return client, nil
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close tolerates a nil client.
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
