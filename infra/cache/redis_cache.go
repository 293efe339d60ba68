package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"log/slog"

	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/redis/go-redis/v9"
)

// RedisAccountCache implements AccountCache using Redis.
type RedisAccountCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisAccountCache creates a RedisAccountCache over an existing client.
func NewRedisAccountCache(
	client *redis.Client,
	prefix string,
	logger *slog.Logger,
) *RedisAccountCache {
	return &RedisAccountCache{client: client, prefix: prefix, logger: logger}
}

// NewRedisAccountCacheFromURL parses a redis:// URL and creates the client.
func NewRedisAccountCacheFromURL(
	url string,
	prefix string,
	logger *slog.Logger,
) (*RedisAccountCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisAccountCache(redis.NewClient(opt), prefix, logger), nil
}

func (r *RedisAccountCache) key(number string) string {
	return r.prefix + "account:" + number
}

func (r *RedisAccountCache) Get(ctx context.Context, number string) (*account.Account, error) {
	val, err := r.client.Get(ctx, r.key(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "number", number)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "number", number, "error", err)
		return nil, err
	}
	var a account.Account
	if err := json.Unmarshal(val, &a); err != nil {
		r.logger.Error("Redis cache unmarshal error", "number", number, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "number", number)
	return &a, nil
}

func (r *RedisAccountCache) Set(ctx context.Context, a *account.Account, ttl time.Duration) error {
	data, err := json.Marshal(a)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "number", a.Number, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(a.Number), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "number", a.Number, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "number", a.Number, "ttl", ttl)
	return nil
}

func (r *RedisAccountCache) Delete(ctx context.Context, number string) error {
	if err := r.client.Del(ctx, r.key(number)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "number", number, "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "number", number)
	return nil
}

// Ping checks connectivity.
func (r *RedisAccountCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisAccountCache) Close() error {
	return r.client.Close()
}
