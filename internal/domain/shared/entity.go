package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with a stable identity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity carries the identity and audit timestamps shared by
// purchase orders, their items and department services
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch marks the entity as modified now
func (e *BaseEntity) Touch() {
	e.TouchAt(time.Now())
}

// TouchAt marks the entity as modified at t. Timestamps never move backwards.
func (e *BaseEntity) TouchAt(t time.Time) {
	if t.After(e.UpdatedAt) {
		e.UpdatedAt = t
	}
}

// NewBaseEntity creates an entity with a fresh ID stamped with the current time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
