package quotecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisOptions parameterise the Redis-backed cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Redis caches comparisons in a shared Redis instance so multiple engine
// replicas see the same results. Failures degrade to cache misses.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedis constructs a Redis-backed cache.
func NewRedis(opts RedisOptions, logger zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &Redis{
		client: client,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// Get returns a cached value, treating any Redis error as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	return raw, true
}

// Set stores a value with the given TTL; failures are logged and dropped.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
