package cache

import (
	"context"
	"fmt"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Store kinds accepted by CreateStore
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a redis store falls back to memory when
// Redis is unreachable. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the store of the given kind ("memory" or "redis")
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context, kind string) (shared.IdempotencyStore, error) {
	switch kind {
	case StoreMemory, "":
		f.logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case StoreRedis:
		store, err := NewRedisIdempotencyStore(ctx, f.redisConfig)
		if err == nil {
			f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Duplicate receipts are only caught within this instance.",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", kind)
	}
}
