// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"family-ledger/internal/domain"
	"family-ledger/internal/util"
)

// RedisConfig configures the connection used by NewRedisClient.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisCurrencyCache keeps currencies as JSON values with a TTL.
type RedisCurrencyCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCurrencyCache(client *redis.Client, ttl time.Duration) *RedisCurrencyCache {
	return &RedisCurrencyCache{
		client: client,
		ttl:    ttl,
		logger: util.ComponentLogger("currency-cache"),
	}
}

func (c *RedisCurrencyCache) Get(ctx context.Context, key string) (*domain.Currency, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Currency cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var currency domain.Currency
	if err := json.Unmarshal(val, &currency); err != nil {
		c.logger.Warn("Dropping malformed currency cache entry", "key", key, "error", err)
		return nil, false
	}
	return &currency, true
}

func (c *RedisCurrencyCache) Set(ctx context.Context, key string, currency *domain.Currency) {
	data, err := json.Marshal(currency)
	if err != nil {
		c.logger.Warn("Failed to encode currency for cache", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Currency cache write failed", "key", key, "error", err)
	}
}

// HealthCheck pings the Redis server.
func (c *RedisCurrencyCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (c *RedisCurrencyCache) Close() error {
	return c.client.Close()
}
