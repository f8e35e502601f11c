package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory store", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(unreachableRedis).CreateStore(ctx, StoreMemory)
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis falls back to memory with a warning", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		factory := NewIdempotencyStoreFactory(unreachableRedis, WithLogger(zap.New(core)))

		store, err := factory.CreateStore(ctx, StoreRedis)
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("redis without fallback fails", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(unreachableRedis, WithInMemoryFallback(false))

		_, err := factory.CreateStore(ctx, StoreRedis)
		assert.ErrorContains(t, err, "redis required")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewIdempotencyStoreFactory(unreachableRedis).CreateStore(ctx, "memcached")
		assert.ErrorContains(t, err, "unknown idempotency store")
	})
}

func TestRedisIdempotencyStore_Errors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        unreachableRedis.Addr(),
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()

	ctx := context.Background()

	claimed, err := store.Claim(ctx, "k", time.Hour)
	assert.False(t, claimed)
	assert.ErrorContains(t, err, "claim idempotency key")

	assert.ErrorContains(t, store.Release(ctx, "k"), "release idempotency key")
	assert.Equal(t, DefaultIdempotencyKeyPrefix, store.keyPrefix)
}
