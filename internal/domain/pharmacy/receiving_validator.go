package pharmacy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// ReceivingValidator checks a proposed receipt against an order's current state.
// It reports every problem it finds, not only the first.
type ReceivingValidator struct {
	clock shared.Clock
}

// NewReceivingValidator creates a validator. A nil clock uses the system clock.
func NewReceivingValidator(clock shared.Clock) *ReceivingValidator {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ReceivingValidator{clock: clock}
}

// Validate returns all violations of event against order; an empty result means valid.
// Neither argument is modified.
func (v *ReceivingValidator) Validate(order PurchaseOrder, event ReceiptEvent) []Violation {
	violations := make([]Violation, 0)

	if !order.Status.CanReceive() {
		violations = append(violations, Violation{
			Kind:    ViolationInvalidOrderState,
			Field:   "status",
			Message: fmt.Sprintf("Cannot receive goods for order %s in %s status", order.PONumber, order.Status),
		})
	}

	today := shared.DateOf(v.clock.Now())
	totals := event.quantitiesByItem()
	overReported := make(map[uuid.UUID]bool)

	for _, line := range event.Lines {
		item, ok := order.Item(line.ItemID)
		if !ok {
			violations = append(violations, Violation{
				Kind:    ViolationUnknownItem,
				ItemID:  line.ItemID,
				Field:   "item_id",
				Message: fmt.Sprintf("Item %s is not part of order %s", line.ItemID, order.PONumber),
			})
			continue
		}

		if line.Quantity < 0 {
			violations = append(violations, Violation{
				Kind:    ViolationNegativeQuantity,
				ItemID:  item.ID,
				Field:   "received_quantity",
				Message: fmt.Sprintf("Received quantity for %s cannot be negative", item.MedicineName),
			})
		}

		if !overReported[item.ID] && totals[item.ID] > item.RemainingQuantity() {
			overReported[item.ID] = true
			remaining := item.RemainingQuantity()
			violations = append(violations, Violation{
				Kind:         ViolationOverReceipt,
				ItemID:       item.ID,
				Field:        "received_quantity",
				Message:      fmt.Sprintf("Cannot receive %d of %s, only %d remaining", totals[item.ID], item.MedicineName, remaining),
				MaxRemaining: &remaining,
			})
		}

		if line.Quantity > 0 {
			if strings.TrimSpace(line.BatchNumber) == "" {
				violations = append(violations, Violation{
					Kind:    ViolationMissingBatch,
					ItemID:  item.ID,
					Field:   "batch_number",
					Message: fmt.Sprintf("Batch number is required when receiving %s", item.MedicineName),
				})
			}
			if line.ExpiryDate == nil {
				violations = append(violations, Violation{
					Kind:    ViolationMissingExpiry,
					ItemID:  item.ID,
					Field:   "expiry_date",
					Message: fmt.Sprintf("Expiry date is required when receiving %s", item.MedicineName),
				})
			}
		}

		if line.ExpiryDate != nil && shared.DateOf(*line.ExpiryDate).Before(today) {
			violations = append(violations, Violation{
				Kind:    ViolationExpiredBeforeToday,
				ItemID:  item.ID,
				Field:   "expiry_date",
				Message: fmt.Sprintf("Expiry date %s of %s is in the past", line.ExpiryDate.Format("2006-01-02"), item.MedicineName),
			})
		}
	}

	return violations
}
