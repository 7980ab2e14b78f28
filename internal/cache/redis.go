package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a Cache shared by every instance pointing at the same server.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: 100,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client, logger: logger, prefix: opts.Prefix}, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		r.logger.Warn("redis delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
