// Package cache provides balance cache implementations for the ledger
// bookkeeper: a Redis-backed cache for deployments and an in-memory cache
// for single-instance and test use.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisClient creates a go-redis client from the config.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisBalanceCache stores cached wallet balances as exact decimal strings.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBalanceCache creates a Redis balance cache. A zero ttl keeps
// entries until overwritten.
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

func balanceKey(walletID string) string {
	return "wallet:balance:" + walletID
}

// GetBalance returns the cached balance; a missing key reports found=false.
func (c *RedisBalanceCache) GetBalance(ctx context.Context, walletID string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, balanceKey(walletID)).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get cached balance: %w", err)
	}

	bal, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached balance %q: %w", val, err)
	}
	return bal, true, nil
}

// SetBalance overwrites the cached balance.
func (c *RedisBalanceCache) SetBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	if err := c.client.Set(ctx, balanceKey(walletID), balance.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached balance: %w", err)
	}
	return nil
}

// HealthCheck pings the Redis server.
func (c *RedisBalanceCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}
