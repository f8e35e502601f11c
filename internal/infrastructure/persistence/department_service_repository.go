package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/department"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDepartmentServiceRepository implements DepartmentServiceRepository using GORM
type GormDepartmentServiceRepository struct {
	db *gorm.DB
}

// NewGormDepartmentServiceRepository creates a new GormDepartmentServiceRepository
func NewGormDepartmentServiceRepository(db *gorm.DB) *GormDepartmentServiceRepository {
	return &GormDepartmentServiceRepository{db: db}
}

// FindByID finds a department service by its ID
func (r *GormDepartmentServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*department.DepartmentService, error) {
	var model models.DepartmentServiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds department services matching the filter
func (r *GormDepartmentServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]department.DepartmentService, error) {
	var serviceModels []models.DepartmentServiceModel

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DepartmentServiceModel{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter, DepartmentServiceSortFields, "name ASC"))

	if err := query.Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	services := make([]department.DepartmentService, len(serviceModels))
	for i := range serviceModels {
		services[i] = *serviceModels[i].ToDomain()
	}
	return services, nil
}

// Count counts department services matching the filter
func (r *GormDepartmentServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DepartmentServiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks whether the department already offers a service with this name.
// The comparison ignores case.
func (r *GormDepartmentServiceRepository) ExistsByName(ctx context.Context, departmentID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DepartmentServiceModel{}).
		Where("department_id = ? AND LOWER(name) = ?", departmentID, strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates a new department service
func (r *GormDepartmentServiceRepository) Save(ctx context.Context, service *department.DepartmentService) error {
	return r.db.WithContext(ctx).Create(models.DepartmentServiceModelFromDomain(service)).Error
}

// SaveWithLock updates a service if its version is unchanged, then bumps the version
func (r *GormDepartmentServiceRepository) SaveWithLock(ctx context.Context, service *department.DepartmentService) error {
	nextVersion := service.Version + 1
	updatedAt := time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.DepartmentServiceModel{}).
		Where("id = ? AND version = ?", service.ID, service.Version).
		Updates(map[string]interface{}{
			"name":                service.Name,
			"description":         service.Description,
			"base_cost":           service.BaseCost,
			"fee_percentage":      service.FeePercentage,
			"discount_percentage": service.DiscountPercentage,
			"doctor_percentage":   service.DoctorPercentage,
			"doctor_id":           service.DoctorID,
			"active":              service.Active,
			"version":             nextVersion,
			"updated_at":          updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from a stale version
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.DepartmentServiceModel{}).
			Where("id = ?", service.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	service.Version = nextVersion
	service.UpdatedAt = updatedAt
	return nil
}

// applyFilter applies search and filter keys to the query
func (r *GormDepartmentServiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "department_id":
			query = query.Where("department_id = ?", value)
		case "active":
			if active, ok := value.(bool); ok {
				query = query.Where("active = ?", active)
			}
		}
	}

	return query
}

// Ensure GormDepartmentServiceRepository implements DepartmentServiceRepository
var _ department.DepartmentServiceRepository = (*GormDepartmentServiceRepository)(nil)
