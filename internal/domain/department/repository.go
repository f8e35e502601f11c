package department

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// DepartmentServiceRepository defines the interface for department service persistence.
// Services are never hard-deleted because billing history keeps referencing them.
type DepartmentServiceRepository interface {
	// FindByID finds a service by ID
	FindByID(ctx context.Context, id uuid.UUID) (*DepartmentService, error)

	// FindAll finds services matching the filter.
	// Supported filter keys: department_id (uuid.UUID), active (bool)
	FindAll(ctx context.Context, filter shared.Filter) ([]DepartmentService, error)

	// Count counts services matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByName checks whether the department already offers a service with this name
	ExistsByName(ctx context.Context, departmentID uuid.UUID, name string) (bool, error)

	// Save creates a new service
	Save(ctx context.Context, service *DepartmentService) error

	// SaveWithLock updates a service if its version is unchanged, then bumps the version
	SaveWithLock(ctx context.Context, service *DepartmentService) error
}
