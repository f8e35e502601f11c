package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a receipt submission key is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore holds submission keys so a retried receipt (double click,
// second tab, client timeout) is applied at most once.
type IdempotencyStore interface {
	// Claim takes key for ttl. It reports false when the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release gives a key back after the claimed operation failed without
	// changing state, so the client can retry with the same key.
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig switches duplicate submission detection on or off.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: DefaultIdempotencyTTL}
}
