package pharmacy

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ReceiptLine is the quantity of one order item delivered in a receipt
type ReceiptLine struct {
	ItemID      uuid.UUID
	Quantity    int
	BatchNumber string
	ExpiryDate  *time.Time
}

// ReceiptEvent is a set of receipt lines submitted together.
// MarkAsComplete asserts the order is finished even if quantities fall short.
type ReceiptEvent struct {
	Lines          []ReceiptLine
	ReceivedDate   time.Time
	Notes          string
	MarkAsComplete bool
	// Reference identifies the submission, typically the client's idempotency key
	Reference string
}

// quantitiesByItem sums positive line quantities per item.
// Sums saturate at math.MaxInt instead of wrapping.
func (e ReceiptEvent) quantitiesByItem() map[uuid.UUID]int {
	totals := make(map[uuid.UUID]int, len(e.Lines))
	for _, line := range e.Lines {
		if line.Quantity <= 0 {
			continue
		}
		sum := totals[line.ItemID]
		if line.Quantity > math.MaxInt-sum {
			sum = math.MaxInt
		} else {
			sum += line.Quantity
		}
		totals[line.ItemID] = sum
	}
	return totals
}
