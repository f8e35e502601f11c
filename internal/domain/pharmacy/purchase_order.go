package pharmacy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity is the largest ordered quantity an item can carry.
// Quantity columns are 32-bit integers.
const MaxItemQuantity = math.MaxInt32

// PurchaseOrderItem is one medicine line of a purchase order
type PurchaseOrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	MedicineID       uuid.UUID
	MedicineName     string
	OrderedQuantity  int
	UnitCost         decimal.Decimal
	TotalPrice       decimal.Decimal // OrderedQuantity * UnitCost
	ReceivedQuantity int             // cumulative, never decremented
	BatchNumber      string
	ExpiryDate       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, medicineID uuid.UUID, medicineName string, quantity int, unitCost valueobject.Money) (*PurchaseOrderItem, error) {
	if medicineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEDICINE", "Medicine ID cannot be empty")
	}
	if strings.TrimSpace(medicineName) == "" {
		return nil, shared.NewDomainError("INVALID_MEDICINE_NAME", "Medicine name cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:              uuid.New(),
		OrderID:         orderID,
		MedicineID:      medicineID,
		MedicineName:    strings.TrimSpace(medicineName),
		OrderedQuantity: quantity,
		UnitCost:        unitCost.Amount(),
		TotalPrice:      unitCost.Times(quantity).Amount(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// RemainingQuantity returns the quantity still to be received
func (i PurchaseOrderItem) RemainingQuantity() int {
	if i.ReceivedQuantity >= i.OrderedQuantity {
		return 0
	}
	return i.OrderedQuantity - i.ReceivedQuantity
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.OrderedQuantity
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity cannot exceed %d", MaxItemQuantity))
	}
	return nil
}

func (i *PurchaseOrderItem) reprice(quantity int, unitCost valueobject.Money) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	i.OrderedQuantity = quantity
	i.UnitCost = unitCost.Amount()
	i.TotalPrice = unitCost.Times(quantity).Amount()
	i.UpdatedAt = time.Now()
	return nil
}

// PurchaseOrder is an order for medicines from a supplier.
// The receiving engine treats it as a value: it is cloned, never mutated in place.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber             string
	SupplierID           uuid.UUID
	SupplierName         string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Status               PurchaseOrderStatus
	Notes                string
	TotalAmount          decimal.Decimal // fixed once the order is sent
	CreatedBy            *uuid.UUID
	Items                []PurchaseOrderItem
	SentAt               *time.Time
	ReceivedAt           *time.Time
	CancelledAt          *time.Time
	CancelReason         string
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(poNumber string, supplierID uuid.UUID, supplierName string, orderDate time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if len(poNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		SupplierID:        supplierID,
		SupplierName:      strings.TrimSpace(supplierName),
		OrderDate:         orderDate,
		Status:            PurchaseOrderStatusDraft,
		TotalAmount:       decimal.Zero,
		Items:             make([]PurchaseOrderItem, 0),
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// Clone returns a deep copy of the order, including pending domain events
func (o PurchaseOrder) Clone() PurchaseOrder {
	next := o
	next.BaseAggregateRoot = o.BaseAggregateRoot.Copy()
	next.ExpectedDeliveryDate = cloneTime(o.ExpectedDeliveryDate)
	next.CreatedBy = cloneUUID(o.CreatedBy)
	next.SentAt = cloneTime(o.SentAt)
	next.ReceivedAt = cloneTime(o.ReceivedAt)
	next.CancelledAt = cloneTime(o.CancelledAt)

	next.Items = make([]PurchaseOrderItem, len(o.Items))
	for idx, item := range o.Items {
		item.ExpiryDate = cloneTime(item.ExpiryDate)
		next.Items[idx] = item
	}
	return next
}

// Item returns the item with the given ID
func (o *PurchaseOrder) Item(itemID uuid.UUID) (*PurchaseOrderItem, bool) {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx], true
		}
	}
	return nil, false
}

// AddItem adds a new medicine line. Only allowed in draft status.
func (o *PurchaseOrder) AddItem(medicineID uuid.UUID, medicineName string, quantity int, unitCost valueobject.Money) (*PurchaseOrderItem, error) {
	if !o.Status.CanEdit() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	for _, item := range o.Items {
		if item.MedicineID == medicineID {
			return nil, shared.NewDomainError("DUPLICATE_MEDICINE", "Medicine already exists in order, update quantity instead")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, medicineID, medicineName, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.Touch()

	return item, nil
}

// UpdateItem changes the ordered quantity and unit cost of a line. Only allowed in draft status.
func (o *PurchaseOrder) UpdateItem(itemID uuid.UUID, quantity int, unitCost valueobject.Money) error {
	if !o.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-draft order")
	}

	item, ok := o.Item(itemID)
	if !ok {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
	}
	if err := item.reprice(quantity, unitCost); err != nil {
		return err
	}

	o.recalculateTotal()
	o.Touch()
	return nil
}

// RemoveItem removes a line. Only allowed in draft status.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if !o.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// SetNotes sets the order notes
func (o *PurchaseOrder) SetNotes(notes string) {
	o.Notes = notes
	o.Touch()
}

// SetExpectedDeliveryDate sets or clears the expected delivery date.
// Not allowed once the order is received or cancelled.
func (o *PurchaseOrder) SetExpectedDeliveryDate(date *time.Time) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change delivery date of a %s order", o.Status))
	}
	if date != nil && shared.DateOf(*date).Before(shared.DateOf(o.OrderDate)) {
		return shared.NewDomainError("INVALID_DELIVERY_DATE", "Expected delivery date cannot be before the order date")
	}
	o.ExpectedDeliveryDate = cloneTime(date)
	o.Touch()
	return nil
}

// SetCreatedBy records the user who raised the order
func (o *PurchaseOrder) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	o.CreatedBy = &userID
}

// Send places the order with the supplier, transitioning from draft to sent.
// The total amount is fixed from this point on.
func (o *PurchaseOrder) Send() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusSent) {
		return invalidOrderState(fmt.Sprintf("Cannot send order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send order without items")
	}

	now := time.Now()
	o.recalculateTotal()
	o.Status = PurchaseOrderStatusSent
	o.SentAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewPurchaseOrderSentEvent(o))

	return nil
}

// ItemCount returns the number of lines
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	o.TotalAmount = total
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
