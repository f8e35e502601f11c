package pharmacy

import (
	"context"
	"fmt"

	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceiptLogHandler handles PurchaseOrderReceivedEvent
// and writes one audit record per applied line
type ReceiptLogHandler struct {
	repo   pharmacy.ReceiptLogRepository
	logger *zap.Logger
}

// NewReceiptLogHandler creates a new handler for purchase order received events
func NewReceiptLogHandler(repo pharmacy.ReceiptLogRepository, logger *zap.Logger) *ReceiptLogHandler {
	return &ReceiptLogHandler{
		repo:   repo,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptLogHandler) EventTypes() []string {
	return []string{pharmacy.EventTypePurchaseOrderReceived}
}

// Handle processes a PurchaseOrderReceivedEvent
func (h *ReceiptLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	receivedEvent, ok := event.(*pharmacy.PurchaseOrderReceivedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", pharmacy.EventTypePurchaseOrderReceived),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			pharmacy.EventTypePurchaseOrderReceived, event.EventType())
	}

	logs := pharmacy.NewReceiptLogs(receivedEvent)
	if len(logs) == 0 {
		// mark_as_complete with no quantities still changes status; nothing to audit per line
		h.logger.Debug("received event without applied lines",
			zap.String("order_id", receivedEvent.OrderID.String()),
			zap.String("status", string(receivedEvent.Status)),
		)
		return nil
	}

	if err := h.repo.SaveBatch(ctx, logs); err != nil {
		h.logger.Error("failed to write receipt log",
			zap.String("order_id", receivedEvent.OrderID.String()),
			zap.String("po_number", receivedEvent.PONumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write receipt log for order %s: %w", receivedEvent.PONumber, err)
	}

	h.logger.Info("receipt logged",
		zap.String("order_id", receivedEvent.OrderID.String()),
		zap.String("po_number", receivedEvent.PONumber),
		zap.Int("lines", len(logs)),
		zap.String("status", string(receivedEvent.Status)),
	)
	return nil
}

// Ensure ReceiptLogHandler implements EventHandler
var _ shared.EventHandler = (*ReceiptLogHandler)(nil)
