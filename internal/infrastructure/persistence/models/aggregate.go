package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// AggregateModel holds the columns every aggregate table carries.
// Version backs the optimistic lock in the repositories' conditional updates.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot copies identity, timestamps and version from a.
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	*m = AggregateModel{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

// ToAggregateRoot rebuilds the aggregate header. Pending events are not persisted.
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
}
