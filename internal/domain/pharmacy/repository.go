package pharmacy

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByPONumber finds a purchase order by its display number
	FindByPONumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)

	// FindAll finds purchase orders matching the filter.
	// Supported filter keys: status, supplier_id, from_date, to_date
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// Count counts purchase orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts purchase orders per status
	CountByStatus(ctx context.Context) (map[PurchaseOrderStatus]int64, error)

	// Save creates a new purchase order with its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an order and its items if the stored version still
	// matches order.Version, then bumps the version.
	// Returns shared.ErrConcurrencyConflict when another write got there first.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// ExistsByPONumber checks if a PO number is taken
	ExistsByPONumber(ctx context.Context, poNumber string) (bool, error)

	// GenerateOrderNumber returns the next PO-<year>-<sequence> number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// ReceiptLogRepository stores the receiving audit trail
type ReceiptLogRepository interface {
	// SaveBatch stores audit records
	SaveBatch(ctx context.Context, logs []ReceiptLog) error

	// FindByOrder returns audit records of an order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ReceiptLog, error)
}
