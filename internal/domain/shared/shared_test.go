package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorIs(t *testing.T) {
	rebuilt := NewDomainError("NOT_FOUND", "Purchase order not found")

	assert.True(t, errors.Is(rebuilt, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("load order: %w", rebuilt), ErrNotFound))
	assert.False(t, errors.Is(rebuilt, ErrAlreadyExists))
	assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	assert.Equal(t, "Purchase order not found", rebuilt.Error())
}

func TestClock(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 23, 30, 0, 0, time.FixedZone("UTC+8", 8*3600))
	clock := ClockFunc(func() time.Time { return fixed })

	assert.Equal(t, fixed, clock.Now())
	assert.WithinDuration(t, time.Now(), SystemClock{}.Now(), time.Second)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), DateOf(fixed))
}

func TestBaseEntityTouchAt(t *testing.T) {
	e := NewBaseEntity()
	require.NotEqual(t, uuid.Nil, e.GetID())
	created := e.UpdatedAt

	e.TouchAt(created.Add(-time.Hour))
	assert.Equal(t, created, e.UpdatedAt)

	later := created.Add(time.Minute)
	e.TouchAt(later)
	assert.Equal(t, later, e.UpdatedAt)
	assert.Equal(t, created, e.CreatedAt)
}

func TestBaseAggregateRootCopy(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Equal(t, 1, root.GetVersion())

	evt := NewBaseDomainEvent("TestEvent", "Test", root.ID)
	root.AddDomainEvent(&evt)

	copied := root.Copy()
	copied.AddDomainEvent(&evt)
	copied.ClearDomainEvents()

	assert.Len(t, root.GetDomainEvents(), 1)
	assert.Empty(t, copied.GetDomainEvents())
}

func TestFilterOffset(t *testing.T) {
	tests := []struct {
		page, size, expected int
	}{
		{0, 20, 0},
		{1, 20, 0},
		{3, 20, 40},
	}
	for _, tt := range tests {
		f := DefaultFilter()
		f.Page, f.PageSize = tt.page, tt.size
		assert.Equal(t, tt.expected, f.Offset())
	}
}

func TestDefaultIdempotencyConfig(t *testing.T) {
	cfg := DefaultIdempotencyConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.TTL)
}
