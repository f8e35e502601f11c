package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PharmacyPurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderSent      = "PurchaseOrderSent"
	EventTypePurchaseOrderReceived  = "PurchaseOrderReceived"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	PONumber     string    `json:"po_number"`
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
	}
}

// PurchaseOrderSentEvent is raised when an order is placed with the supplier
type PurchaseOrderSentEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	PONumber    string          `json:"po_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPurchaseOrderSentEvent creates a new PurchaseOrderSentEvent
func NewPurchaseOrderSentEvent(order *PurchaseOrder) *PurchaseOrderSentEvent {
	return &PurchaseOrderSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSent, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		ItemCount:       len(order.Items),
		TotalAmount:     order.TotalAmount,
	}
}

// ReceivedLineInfo describes one applied receipt line
type ReceivedLineInfo struct {
	ItemID           uuid.UUID  `json:"item_id"`
	MedicineID       uuid.UUID  `json:"medicine_id"`
	MedicineName     string     `json:"medicine_name"`
	Quantity         int        `json:"quantity"`          // received in this event
	ReceivedQuantity int        `json:"received_quantity"` // cumulative after this event
	OrderedQuantity  int        `json:"ordered_quantity"`
	BatchNumber      string     `json:"batch_number"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
}

// PurchaseOrderReceivedEvent is raised for every applied receipt
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID           `json:"order_id"`
	PONumber       string              `json:"po_number"`
	SupplierID     uuid.UUID           `json:"supplier_id"`
	PreviousStatus PurchaseOrderStatus `json:"previous_status"`
	Status         PurchaseOrderStatus `json:"status"`
	Lines          []ReceivedLineInfo  `json:"lines"`
	ReceivedDate   time.Time           `json:"received_date"`
	Notes          string              `json:"notes,omitempty"`
	MarkAsComplete bool                `json:"mark_as_complete"`
	Reference      string              `json:"reference,omitempty"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder, previous PurchaseOrderStatus, lines []ReceivedLineInfo, receipt ReceiptEvent) *PurchaseOrderReceivedEvent {
	receivedDate := receipt.ReceivedDate
	if receivedDate.IsZero() {
		receivedDate = order.UpdatedAt
	}
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		PreviousStatus:  previous,
		Status:          order.Status,
		Lines:           lines,
		ReceivedDate:    receivedDate,
		Notes:           receipt.Notes,
		MarkAsComplete:  receipt.MarkAsComplete,
		Reference:       receipt.Reference,
	}
}

// IsCompleted reports whether this receipt closed the order
func (e *PurchaseOrderReceivedEvent) IsCompleted() bool {
	return e.Status == PurchaseOrderStatusReceived
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID           `json:"order_id"`
	PONumber       string              `json:"po_number"`
	PreviousStatus PurchaseOrderStatus `json:"previous_status"`
	CancelReason   string              `json:"cancel_reason"`
	HadReceipts    bool                `json:"had_receipts"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, previous PurchaseOrderStatus) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		PreviousStatus:  previous,
		CancelReason:    order.CancelReason,
		HadReceipts:     Summarize(*order).TotalReceived > 0,
	}
}
