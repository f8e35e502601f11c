package pharmacy

// PurchaseOrderStatus represents the status of a pharmacy purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "sent"
	PurchaseOrderStatusPartial   PurchaseOrderStatus = "partial"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// AllPurchaseOrderStatuses lists every status in lifecycle order
func AllPurchaseOrderStatuses() []PurchaseOrderStatus {
	return []PurchaseOrderStatus{
		PurchaseOrderStatusDraft,
		PurchaseOrderStatusSent,
		PurchaseOrderStatusPartial,
		PurchaseOrderStatusReceived,
		PurchaseOrderStatusCancelled,
	}
}

// ParsePurchaseOrderStatus accepts the stored form and the legacy "ordered" alias of sent
func ParsePurchaseOrderStatus(s string) (PurchaseOrderStatus, bool) {
	if s == "ordered" {
		return PurchaseOrderStatusSent, true
	}
	status := PurchaseOrderStatus(s)
	return status, status.IsValid()
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusPartial,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusPartial || target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartial:
		return target == PurchaseOrderStatusPartial || target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if goods can be received in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusSent || s == PurchaseOrderStatusPartial
}

// CanCancel returns true if the order can still be cancelled
func (s PurchaseOrderStatus) CanCancel() bool {
	return s.CanTransitionTo(PurchaseOrderStatusCancelled)
}

// CanEdit returns true if items and prices may still change
func (s PurchaseOrderStatus) CanEdit() bool {
	return s == PurchaseOrderStatusDraft
}

// IsTerminal returns true for received and cancelled
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}
