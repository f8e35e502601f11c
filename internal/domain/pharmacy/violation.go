package pharmacy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// ViolationKind classifies a receipt validation failure
type ViolationKind string

const (
	ViolationNegativeQuantity   ViolationKind = "NEGATIVE_QUANTITY"
	ViolationOverReceipt        ViolationKind = "OVER_RECEIPT"
	ViolationMissingBatch       ViolationKind = "MISSING_BATCH"
	ViolationMissingExpiry      ViolationKind = "MISSING_EXPIRY"
	ViolationExpiredBeforeToday ViolationKind = "EXPIRED_BEFORE_TODAY"
	ViolationInvalidOrderState  ViolationKind = "INVALID_ORDER_STATE"
	ViolationUnknownItem        ViolationKind = "UNKNOWN_ITEM"
)

// Violation is one problem found in a receipt.
// ItemID is uuid.Nil for order-level violations.
type Violation struct {
	Kind         ViolationKind
	ItemID       uuid.UUID
	Field        string
	Message      string
	MaxRemaining *int // set for OverReceipt
}

// IsOrderLevel reports whether the violation concerns the order rather than an item
func (v Violation) IsOrderLevel() bool {
	return v.ItemID == uuid.Nil
}

// ErrInvalidOrderState is returned for illegal order-level transitions
var ErrInvalidOrderState = shared.NewDomainError(string(ViolationInvalidOrderState), "Operation not allowed for the order's current status")

// ErrReceiptRejected matches any ReceiptRejectedError via errors.Is
var ErrReceiptRejected = shared.NewDomainError("RECEIPT_REJECTED", "Receipt failed validation")

// ReceiptRejectedError carries every violation found in a rejected receipt
type ReceiptRejectedError struct {
	OrderID    uuid.UUID
	Violations []Violation
}

// Error implements the error interface
func (e *ReceiptRejectedError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("receipt rejected with %d violation(s): %s", len(e.Violations), strings.Join(msgs, "; "))
}

// Is lets errors.Is(err, ErrReceiptRejected) succeed
func (e *ReceiptRejectedError) Is(target error) bool {
	return target == ErrReceiptRejected
}

// Kinds returns the violation kinds in order
func (e *ReceiptRejectedError) Kinds() []ViolationKind {
	kinds := make([]ViolationKind, len(e.Violations))
	for i, v := range e.Violations {
		kinds[i] = v.Kind
	}
	return kinds
}

func invalidOrderState(msg string) *shared.DomainError {
	return shared.NewDomainError(ErrInvalidOrderState.Code, msg)
}
