package pharmacy

import (
	"fmt"
	"strings"

	"github.com/hms/backend/internal/domain/shared"
)

// ReceiptEngine applies validated receipts and cancellations to purchase orders.
// It holds no lock; callers serialise writes per order at the persistence layer.
type ReceiptEngine struct {
	validator *ReceivingValidator
	clock     shared.Clock
}

// NewReceiptEngine creates an engine. A nil clock uses the system clock.
func NewReceiptEngine(validator *ReceivingValidator, clock shared.Clock) *ReceiptEngine {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if validator == nil {
		validator = NewReceivingValidator(clock)
	}
	return &ReceiptEngine{validator: validator, clock: clock}
}

// Validator returns the validator used by Apply
func (e *ReceiptEngine) Validator() *ReceivingValidator {
	return e.validator
}

// Apply validates event and returns the order state after receiving it.
// On any violation it returns the input order untouched and a *ReceiptRejectedError.
func (e *ReceiptEngine) Apply(order PurchaseOrder, event ReceiptEvent) (PurchaseOrder, error) {
	if violations := e.validator.Validate(order, event); len(violations) > 0 {
		return order, &ReceiptRejectedError{OrderID: order.ID, Violations: violations}
	}

	now := e.clock.Now()
	next := order.Clone()
	applied := make([]ReceivedLineInfo, 0, len(event.Lines))

	for _, line := range event.Lines {
		if line.Quantity <= 0 {
			continue
		}
		item, _ := next.Item(line.ItemID)
		item.ReceivedQuantity += line.Quantity
		item.BatchNumber = strings.TrimSpace(line.BatchNumber)
		item.ExpiryDate = cloneTime(line.ExpiryDate)
		item.UpdatedAt = now

		applied = append(applied, ReceivedLineInfo{
			ItemID:           item.ID,
			MedicineID:       item.MedicineID,
			MedicineName:     item.MedicineName,
			Quantity:         line.Quantity,
			ReceivedQuantity: item.ReceivedQuantity,
			OrderedQuantity:  item.OrderedQuantity,
			BatchNumber:      item.BatchNumber,
			ExpiryDate:       cloneTime(item.ExpiryDate),
		})
	}

	previous := next.Status
	next.Status = statusAfterReceipt(next, event.MarkAsComplete)
	if next.Status == PurchaseOrderStatusReceived {
		next.ReceivedAt = &now
	}
	if event.Notes != "" {
		next.Notes = appendNote(next.Notes, event.Notes)
	}
	next.UpdatedAt = now

	next.AddDomainEvent(NewPurchaseOrderReceivedEvent(&next, previous, applied, event))

	return next, nil
}

// Cancel returns the order state after cancellation.
// Quantities already received stay recorded.
func (e *ReceiptEngine) Cancel(order PurchaseOrder, reason string) (PurchaseOrder, error) {
	if !order.Status.CanCancel() {
		return order, invalidOrderState(fmt.Sprintf("Cannot cancel order in %s status", order.Status))
	}

	now := e.clock.Now()
	next := order.Clone()
	previous := next.Status
	next.Status = PurchaseOrderStatusCancelled
	next.CancelledAt = &now
	next.CancelReason = reason
	next.UpdatedAt = now

	next.AddDomainEvent(NewPurchaseOrderCancelledEvent(&next, previous))

	return next, nil
}

// statusAfterReceipt derives the order status once receipt quantities are applied
func statusAfterReceipt(order PurchaseOrder, markAsComplete bool) PurchaseOrderStatus {
	if markAsComplete || Summarize(order).IsFullyReceived {
		return PurchaseOrderStatusReceived
	}
	for _, item := range order.Items {
		if item.ReceivedQuantity > 0 {
			return PurchaseOrderStatusPartial
		}
	}
	return order.Status
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
