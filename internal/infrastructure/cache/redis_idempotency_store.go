package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyKeyPrefix namespaces receipt submission keys.
const DefaultIdempotencyKeyPrefix = "hms:receipt:idempotency:"

const redisConnectTimeout = 5 * time.Second

// RedisIdempotencyStore shares claims between every replica of the service.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore dials Redis and fails fast when it does not answer PING.
func NewRedisIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := NewRedisIdempotencyStoreWithClient(client, "")

	ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr(), err)
	}
	return store, nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client. An empty prefix
// means DefaultIdempotencyKeyPrefix.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultIdempotencyKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Claim uses SET NX PX: of any number of concurrent claims across replicas,
// exactly one succeeds.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key %q: %w", key, err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key %q: %w", key, err)
	}
	return nil
}

// Ping backs the redis health check.
func (s *RedisIdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
