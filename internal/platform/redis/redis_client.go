// Package redis builds the Redis client used for login sessions.
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection with PING.
// The client is closed when the check fails.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := checkConnection(ctx, rdb, cfg.Addr); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// 接続確認
func checkConnection(ctx context.Context, rdb *redis.Client, addr string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		return err
	}

	slog.Info("Redis connection successful", "address", addr)
	return nil
}
