package pharmacy

import (
	"strings"

	"github.com/google/uuid"
)

// Summary is the receiving progress of an order
type Summary struct {
	TotalOrdered    int  `json:"total_ordered"`
	TotalReceived   int  `json:"total_received"`
	ProgressPercent int  `json:"progress_percent"`
	IsFullyReceived bool `json:"is_fully_received"`
}

// Summarize derives the receiving progress of order. A zero-item order counts as fully received.
func Summarize(order PurchaseOrder) Summary {
	var s Summary
	for _, item := range order.Items {
		s.TotalOrdered += item.OrderedQuantity
		s.TotalReceived += item.ReceivedQuantity
	}
	s.ProgressPercent = progressPercent(s.TotalReceived, s.TotalOrdered)
	s.IsFullyReceived = s.TotalReceived >= s.TotalOrdered
	return s
}

// progressPercent returns round(100*received/ordered), half up
func progressPercent(received, ordered int) int {
	if ordered <= 0 {
		return 0
	}
	return (200*received + ordered) / (2 * ordered)
}

// ItemWarning flags a receipt line for interactive feedback before submission
type ItemWarning struct {
	ItemID       uuid.UUID       `json:"item_id"`
	MedicineName string          `json:"medicine_name"`
	Remaining    int             `json:"remaining"`
	Kinds        []ViolationKind `json:"kinds"`
}

// ItemsWithWarnings lists order items whose lines in event exceed the remaining
// quantity or receive goods without a batch or expiry.
// It is a quick subset of ReceivingValidator and never replaces it.
func ItemsWithWarnings(order PurchaseOrder, event ReceiptEvent) []ItemWarning {
	totals := event.quantitiesByItem()
	missingBatch := make(map[uuid.UUID]bool)
	missingExpiry := make(map[uuid.UUID]bool)
	for _, line := range event.Lines {
		if line.Quantity <= 0 {
			continue
		}
		if strings.TrimSpace(line.BatchNumber) == "" {
			missingBatch[line.ItemID] = true
		}
		if line.ExpiryDate == nil {
			missingExpiry[line.ItemID] = true
		}
	}

	warnings := make([]ItemWarning, 0)
	for _, item := range order.Items {
		var kinds []ViolationKind
		if totals[item.ID] > item.RemainingQuantity() {
			kinds = append(kinds, ViolationOverReceipt)
		}
		if missingBatch[item.ID] {
			kinds = append(kinds, ViolationMissingBatch)
		}
		if missingExpiry[item.ID] {
			kinds = append(kinds, ViolationMissingExpiry)
		}
		if len(kinds) == 0 {
			continue
		}
		warnings = append(warnings, ItemWarning{
			ItemID:       item.ID,
			MedicineName: item.MedicineName,
			Remaining:    item.RemainingQuantity(),
			Kinds:        kinds,
		})
	}
	return warnings
}
