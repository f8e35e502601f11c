package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db, clock: shared.SystemClock{}}
}

// SetClock overrides the clock used to pick the PO number year
func (r *GormPurchaseOrderRepository) SetClock(clock shared.Clock) {
	if clock != nil {
		r.clock = clock
	}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*pharmacy.PurchaseOrder, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByPONumber finds a purchase order by its display number
func (r *GormPurchaseOrderRepository) FindByPONumber(ctx context.Context, poNumber string) (*pharmacy.PurchaseOrder, error) {
	return r.findOne(ctx, "po_number = ?", poNumber)
}

func (r *GormPurchaseOrderRepository) findOne(ctx context.Context, query string, args ...interface{}) (*pharmacy.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where(query, args...).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pharmacy.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel

	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{})
	query = r.applyFilter(query, filter)

	// Items are needed for item counts and progress in list views
	if err := query.Preload("Items").Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]pharmacy.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts purchase orders per status
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[pharmacy.PurchaseOrderStatus]int64, error) {
	var rows []struct {
		Status pharmacy.PurchaseOrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[pharmacy.PurchaseOrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save creates a new purchase order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *pharmacy.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(order)

		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *pharmacy.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var current models.PurchaseOrderModel
		if err := tx.Select("version").Where("id = ?", order.ID).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != order.Version {
			return shared.ErrConcurrencyConflict
		}

		nextVersion := order.Version + 1
		updatedAt := time.Now()

		// Update order with version check
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]interface{}{
				"supplier_id":            order.SupplierID,
				"supplier_name":          order.SupplierName,
				"order_date":             order.OrderDate,
				"expected_delivery_date": order.ExpectedDeliveryDate,
				"status":                 order.Status,
				"notes":                  order.Notes,
				"total_amount":           order.TotalAmount,
				"sent_at":                order.SentAt,
				"received_at":            order.ReceivedAt,
				"cancelled_at":           order.CancelledAt,
				"cancel_reason":          order.CancelReason,
				"version":                nextVersion,
				"updated_at":             updatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := r.syncItems(tx, order); err != nil {
			return err
		}

		order.Version = nextVersion
		order.UpdatedAt = updatedAt
		return nil
	})
}

// syncItems deletes items no longer on the order and upserts the rest
func (r *GormPurchaseOrderRepository) syncItems(tx *gorm.DB, order *pharmacy.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	stale := tx.Where("order_id = ?", order.ID)
	if len(currentItemIDs) > 0 {
		stale = stale.Where("id NOT IN ?", currentItemIDs)
	}
	if err := stale.Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
		return err
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		itemModel := &models.PurchaseOrderItemModel{}
		itemModel.FromDomain(order.ID, &order.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// ExistsByPONumber checks if a PO number is taken
func (r *GormPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, poNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("po_number = ?", poNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber generates the next order number for the current year.
// Format: PO-YYYY-NNNNN (e.g., PO-2026-00001)
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PO-%d-", r.clock.Now().Year())

	// Get the highest order number for this year
	var lastOrder models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("po_number LIKE ?", prefix+"%").
		Order("po_number DESC").
		First(&lastOrder).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.PONumber != "" {
		var num int64
		if _, parseErr := fmt.Sscanf(strings.TrimPrefix(lastOrder.PONumber, prefix), "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	for i := 0; i < 100; i++ {
		poNumber := fmt.Sprintf("%s%05d", prefix, nextNum)
		exists, err := r.ExistsByPONumber(ctx, poNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			return poNumber, nil
		}
		nextNum++
	}
	return "", shared.NewDomainError("PO_NUMBER_EXHAUSTED", "Could not allocate a unique purchase order number")
}

// applyFilter applies filter options to the query
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	// Ordering is whitelisted to prevent SQL injection
	return query.Order(orderClause(filter, PurchaseOrderSortFields, "created_at DESC"))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(po_number) LIKE ? OR LOWER(supplier_name) LIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "from_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "to_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ pharmacy.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
