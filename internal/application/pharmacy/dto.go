package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID           uuid.UUID                      `json:"supplier_id" binding:"required"`
	SupplierName         string                         `json:"supplier_name" binding:"required,min=1,max=200"`
	OrderDate            *time.Time                     `json:"order_date"`
	ExpectedDeliveryDate *time.Time                     `json:"expected_delivery_date"`
	Items                []CreatePurchaseOrderItemInput `json:"items" binding:"omitempty,dive"`
	Notes                string                         `json:"notes" binding:"max=2000"`
	CreatedBy            *uuid.UUID                     `json:"-"`
}

// CreatePurchaseOrderItemInput represents an item in the create order request
type CreatePurchaseOrderItemInput struct {
	MedicineID   uuid.UUID       `json:"medicine_id" binding:"required"`
	MedicineName string          `json:"medicine_name" binding:"required,min=1,max=200"`
	Quantity     int             `json:"quantity" binding:"required,min=1,max=2147483647"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// UpdatePurchaseOrderRequest represents a request to update a draft purchase order
type UpdatePurchaseOrderRequest struct {
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	ClearExpectedDate    bool       `json:"clear_expected_delivery_date"`
	Notes                *string    `json:"notes" binding:"omitempty,max=2000"`
}

// AddPurchaseOrderItemRequest represents a request to add an item to a draft order
type AddPurchaseOrderItemRequest = CreatePurchaseOrderItemInput

// UpdatePurchaseOrderItemRequest represents a request to change a draft order item
type UpdatePurchaseOrderItemRequest struct {
	Quantity int             `json:"quantity" binding:"required,min=1,max=2147483647"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ReceiveItemInput is one delivered line
type ReceiveItemInput struct {
	ItemID           uuid.UUID  `json:"item_id" binding:"required"`
	ReceivedQuantity int        `json:"received_quantity" binding:"max=2147483647"`
	BatchNumber      string     `json:"batch_number"`
	ExpiryDate       *time.Time `json:"expiry_date"`
}

// ReceivePurchaseOrderRequest represents a receipt submission
type ReceivePurchaseOrderRequest struct {
	Items          []ReceiveItemInput `json:"items" binding:"omitempty,dive"`
	ReceivedDate   *time.Time         `json:"received_date"`
	Notes          string             `json:"notes" binding:"max=2000"`
	MarkAsComplete bool               `json:"mark_as_complete"`
	// IdempotencyKey is usually taken from the Idempotency-Key header
	IdempotencyKey string `json:"idempotency_key" binding:"max=128"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PurchaseOrderListFilter represents filter options for purchase order list
type PurchaseOrderListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	PONumber             string                      `json:"po_number"`
	SupplierID           uuid.UUID                   `json:"supplier_id"`
	SupplierName         string                      `json:"supplier_name"`
	OrderDate            time.Time                   `json:"order_date"`
	ExpectedDeliveryDate *time.Time                  `json:"expected_delivery_date,omitempty"`
	Status               string                      `json:"status"`
	Notes                string                      `json:"notes,omitempty"`
	TotalAmount          decimal.Decimal             `json:"total_amount"`
	Items                []PurchaseOrderItemResponse `json:"items"`
	ItemCount            int                         `json:"item_count"`
	Summary              pharmacy.Summary            `json:"summary"`
	CreatedBy            *uuid.UUID                  `json:"created_by,omitempty"`
	SentAt               *time.Time                  `json:"sent_at,omitempty"`
	ReceivedAt           *time.Time                  `json:"received_at,omitempty"`
	CancelledAt          *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason         string                      `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	Version              int                         `json:"version"`
}

// PurchaseOrderListItemResponse represents a purchase order in list responses
type PurchaseOrderListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	PONumber        string          `json:"po_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	OrderDate       time.Time       `json:"order_date"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ItemCount       int             `json:"item_count"`
	ProgressPercent int             `json:"progress_percent"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PurchaseOrderItemResponse represents a purchase order item in API responses
type PurchaseOrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	MedicineID        uuid.UUID       `json:"medicine_id"`
	MedicineName      string          `json:"medicine_name"`
	OrderedQuantity   int             `json:"ordered_quantity"`
	ReceivedQuantity  int             `json:"received_quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
}

// ReceivedLineResponse describes one applied receipt line
type ReceivedLineResponse struct {
	ItemID           uuid.UUID  `json:"item_id"`
	MedicineID       uuid.UUID  `json:"medicine_id"`
	MedicineName     string     `json:"medicine_name"`
	Quantity         int        `json:"quantity"`
	ReceivedQuantity int        `json:"received_quantity"`
	OrderedQuantity  int        `json:"ordered_quantity"`
	BatchNumber      string     `json:"batch_number"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
}

// ReceiveResultResponse represents the result of a receive operation
type ReceiveResultResponse struct {
	Order          PurchaseOrderResponse  `json:"order"`
	ReceivedLines  []ReceivedLineResponse `json:"received_lines"`
	PreviousStatus string                 `json:"previous_status"`
}

// ViolationResponse is one receipt validation problem
type ViolationResponse struct {
	Kind         string     `json:"kind"`
	ItemID       *uuid.UUID `json:"item_id,omitempty"`
	Field        string     `json:"field"`
	Message      string     `json:"message"`
	MaxRemaining *int       `json:"max_remaining,omitempty"`
}

// ReceiptPreviewResponse reports what a receipt would do without applying it
type ReceiptPreviewResponse struct {
	Valid           bool                   `json:"valid"`
	Violations      []ViolationResponse    `json:"violations"`
	Warnings        []pharmacy.ItemWarning `json:"warnings"`
	Current         pharmacy.Summary       `json:"current"`
	Projected       *pharmacy.Summary      `json:"projected,omitempty"`
	ProjectedStatus string                 `json:"projected_status,omitempty"`
}

// ReceiptLogResponse is one audit record of an applied receipt line
type ReceiptLogResponse struct {
	ID             uuid.UUID  `json:"id"`
	ItemID         uuid.UUID  `json:"item_id"`
	MedicineID     uuid.UUID  `json:"medicine_id"`
	Quantity       int        `json:"quantity"`
	BatchNumber    string     `json:"batch_number"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	ReceivedDate   time.Time  `json:"received_date"`
	Notes          string     `json:"notes,omitempty"`
	MarkAsComplete bool       `json:"mark_as_complete"`
	ResultStatus   string     `json:"result_status"`
	Reference      string     `json:"reference,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PurchaseOrderStatusSummary represents a count of purchase orders by status
type PurchaseOrderStatusSummary struct {
	Draft          int64 `json:"draft"`
	Sent           int64 `json:"sent"`
	Partial        int64 `json:"partial"`
	Received       int64 `json:"received"`
	Cancelled      int64 `json:"cancelled"`
	Total          int64 `json:"total"`
	PendingReceipt int64 `json:"pending_receipt"` // sent + partial
}

// ToPurchaseOrderResponse converts domain PurchaseOrder to response DTO
func ToPurchaseOrderResponse(order *pharmacy.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToPurchaseOrderItemResponse(&order.Items[i])
	}

	return PurchaseOrderResponse{
		ID:                   order.ID,
		PONumber:             order.PONumber,
		SupplierID:           order.SupplierID,
		SupplierName:         order.SupplierName,
		OrderDate:            order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		Status:               string(order.Status),
		Notes:                order.Notes,
		TotalAmount:          order.TotalAmount,
		Items:                items,
		ItemCount:            order.ItemCount(),
		Summary:              pharmacy.Summarize(*order),
		CreatedBy:            order.CreatedBy,
		SentAt:               order.SentAt,
		ReceivedAt:           order.ReceivedAt,
		CancelledAt:          order.CancelledAt,
		CancelReason:         order.CancelReason,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Version:              order.Version,
	}
}

// ToPurchaseOrderListItemResponses converts a slice of domain orders to list responses
func ToPurchaseOrderListItemResponses(orders []pharmacy.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		responses[i] = PurchaseOrderListItemResponse{
			ID:              o.ID,
			PONumber:        o.PONumber,
			SupplierID:      o.SupplierID,
			SupplierName:    o.SupplierName,
			OrderDate:       o.OrderDate,
			Status:          string(o.Status),
			TotalAmount:     o.TotalAmount,
			ItemCount:       o.ItemCount(),
			ProgressPercent: pharmacy.Summarize(*o).ProgressPercent,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}
	}
	return responses
}

// ToPurchaseOrderItemResponse converts domain PurchaseOrderItem to response DTO
func ToPurchaseOrderItemResponse(item *pharmacy.PurchaseOrderItem) PurchaseOrderItemResponse {
	return PurchaseOrderItemResponse{
		ID:                item.ID,
		MedicineID:        item.MedicineID,
		MedicineName:      item.MedicineName,
		OrderedQuantity:   item.OrderedQuantity,
		ReceivedQuantity:  item.ReceivedQuantity,
		RemainingQuantity: item.RemainingQuantity(),
		UnitCost:          item.UnitCost,
		TotalPrice:        item.TotalPrice,
		BatchNumber:       item.BatchNumber,
		ExpiryDate:        item.ExpiryDate,
	}
}

// ToReceivedLineResponses converts applied lines to response DTOs
func ToReceivedLineResponses(lines []pharmacy.ReceivedLineInfo) []ReceivedLineResponse {
	responses := make([]ReceivedLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = ReceivedLineResponse{
			ItemID:           l.ItemID,
			MedicineID:       l.MedicineID,
			MedicineName:     l.MedicineName,
			Quantity:         l.Quantity,
			ReceivedQuantity: l.ReceivedQuantity,
			OrderedQuantity:  l.OrderedQuantity,
			BatchNumber:      l.BatchNumber,
			ExpiryDate:       l.ExpiryDate,
		}
	}
	return responses
}

// ToViolationResponses converts domain violations to response DTOs
func ToViolationResponses(violations []pharmacy.Violation) []ViolationResponse {
	responses := make([]ViolationResponse, len(violations))
	for i, v := range violations {
		resp := ViolationResponse{
			Kind:         string(v.Kind),
			Field:        v.Field,
			Message:      v.Message,
			MaxRemaining: v.MaxRemaining,
		}
		if !v.IsOrderLevel() {
			id := v.ItemID
			resp.ItemID = &id
		}
		responses[i] = resp
	}
	return responses
}

// ToReceiptLogResponses converts audit records to response DTOs
func ToReceiptLogResponses(logs []pharmacy.ReceiptLog) []ReceiptLogResponse {
	responses := make([]ReceiptLogResponse, len(logs))
	for i, l := range logs {
		responses[i] = ReceiptLogResponse{
			ID:             l.ID,
			ItemID:         l.ItemID,
			MedicineID:     l.MedicineID,
			Quantity:       l.Quantity,
			BatchNumber:    l.BatchNumber,
			ExpiryDate:     l.ExpiryDate,
			ReceivedDate:   l.ReceivedDate,
			Notes:          l.Notes,
			MarkAsComplete: l.MarkAsComplete,
			ResultStatus:   string(l.ResultStatus),
			Reference:      l.Reference,
			CreatedAt:      l.CreatedAt,
		}
	}
	return responses
}

// toReceiptEvent converts a receive request to the domain receipt event
func toReceiptEvent(req ReceivePurchaseOrderRequest, now time.Time) pharmacy.ReceiptEvent {
	lines := make([]pharmacy.ReceiptLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = pharmacy.ReceiptLine{
			ItemID:      item.ItemID,
			Quantity:    item.ReceivedQuantity,
			BatchNumber: item.BatchNumber,
			ExpiryDate:  item.ExpiryDate,
		}
	}
	receivedDate := now
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}
	return pharmacy.ReceiptEvent{
		Lines:          lines,
		ReceivedDate:   receivedDate,
		Notes:          req.Notes,
		MarkAsComplete: req.MarkAsComplete,
		Reference:      req.IdempotencyKey,
	}
}
