package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptLog is the audit record of one applied receipt line
type ReceiptLog struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ItemID         uuid.UUID
	MedicineID     uuid.UUID
	Quantity       int
	BatchNumber    string
	ExpiryDate     *time.Time
	ReceivedDate   time.Time
	Notes          string
	MarkAsComplete bool
	ResultStatus   PurchaseOrderStatus
	Reference      string
	CreatedAt      time.Time
}

// NewReceiptLogs builds one audit record per line of a received event
func NewReceiptLogs(evt *PurchaseOrderReceivedEvent) []ReceiptLog {
	now := time.Now()
	logs := make([]ReceiptLog, 0, len(evt.Lines))
	for _, line := range evt.Lines {
		logs = append(logs, ReceiptLog{
			ID:             uuid.New(),
			OrderID:        evt.OrderID,
			ItemID:         line.ItemID,
			MedicineID:     line.MedicineID,
			Quantity:       line.Quantity,
			BatchNumber:    line.BatchNumber,
			ExpiryDate:     cloneTime(line.ExpiryDate),
			ReceivedDate:   evt.ReceivedDate,
			Notes:          evt.Notes,
			MarkAsComplete: evt.MarkAsComplete,
			ResultStatus:   evt.Status,
			Reference:      evt.Reference,
			CreatedAt:      now,
		})
	}
	return logs
}
