package database

import (
	"context"
	"fmt"
	"time"

	"trendmine/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const clientName = "trendmine"

// RedisClient holds the connection backing the cached session.
type RedisClient struct {
	Client *redis.Client
	dial   time.Duration
}

// NewRedis builds a client without touching the network.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is not configured")
	}

	dial := msOr(cfg.DialTimeout, 3*time.Second)
	op := msOr(cfg.OpTimeout, 2*time.Second)
	pool := cfg.PoolSize
	if pool <= 0 {
		pool = 4
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  dial,
		ReadTimeout:  op,
		WriteTimeout: op,
		PoolSize:     pool,
		MaxRetries:   1,
	})

	return &RedisClient{Client: rdb, dial: dial}, nil
}

// Connect builds a client and pings it, bounded by the dial timeout.
// The client is closed when the ping fails.
func Connect(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	rc, err := NewRedis(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, rc.dial)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

func msOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
