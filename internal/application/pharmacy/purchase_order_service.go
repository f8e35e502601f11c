package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/hms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseOrderService handles pharmacy purchase order business operations
type PurchaseOrderService struct {
	orderRepo         pharmacy.PurchaseOrderRepository
	receiptLogRepo    pharmacy.ReceiptLogRepository
	engine            *pharmacy.ReceiptEngine
	clock             shared.Clock
	idempotencyStore  shared.IdempotencyStore
	idempotencyConfig shared.IdempotencyConfig
	eventPublisher    shared.EventPublisher
	businessMetrics   *telemetry.BusinessMetrics
	logger            *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService.
// A nil engine uses a system-clock engine; a nil receiptLogRepo disables receipt history.
func NewPurchaseOrderService(
	orderRepo pharmacy.PurchaseOrderRepository,
	receiptLogRepo pharmacy.ReceiptLogRepository,
	engine *pharmacy.ReceiptEngine,
) *PurchaseOrderService {
	if engine == nil {
		engine = pharmacy.NewReceiptEngine(nil, nil)
	}
	return &PurchaseOrderService{
		orderRepo:         orderRepo,
		receiptLogRepo:    receiptLogRepo,
		engine:            engine,
		clock:             shared.SystemClock{},
		idempotencyConfig: shared.DefaultIdempotencyConfig(),
		logger:            zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PurchaseOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetIdempotencyStore enables duplicate receipt detection
func (s *PurchaseOrderService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyTTL
	}
	s.idempotencyConfig = cfg
}

// SetClock sets the clock used for default dates
func (s *PurchaseOrderService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// SetLogger sets the logger
func (s *PurchaseOrderService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create creates a new draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	poNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	orderDate := s.clock.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order, err := pharmacy.NewPurchaseOrder(poNumber, req.SupplierID, req.SupplierName, orderDate)
	if err != nil {
		return nil, err
	}

	if err := order.SetExpectedDeliveryDate(req.ExpectedDeliveryDate); err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := order.AddItem(item.MedicineID, item.MedicineName, item.Quantity, valueobject.NewDefaultMoney(item.UnitCost)); err != nil {
			return nil, err
		}
	}

	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}
	if req.CreatedBy != nil {
		order.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderCreated(ctx, order.TotalAmount)
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByPONumber retrieves a purchase order by its PO number
func (s *PurchaseOrderService) GetByPONumber(ctx context.Context, poNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByPONumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "order_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != "" {
		status, ok := pharmacy.ParsePurchaseOrderStatus(filter.Status)
		if !ok {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown purchase order status: %s", filter.Status))
		}
		domainFilter.Filters["status"] = status
	}
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.FromDate != nil {
		domainFilter.Filters["from_date"] = *filter.FromDate
	}
	if filter.ToDate != nil {
		domainFilter.Filters["to_date"] = *filter.ToDate
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderListItemResponses(orders), total, nil
}

// Update changes the notes or expected delivery date of an order
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.ClearExpectedDate {
		if err := order.SetExpectedDeliveryDate(nil); err != nil {
			return nil, err
		}
	} else if req.ExpectedDeliveryDate != nil {
		if err := order.SetExpectedDeliveryDate(req.ExpectedDeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		order.SetNotes(*req.Notes)
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// AddItem adds an item to a draft purchase order
func (s *PurchaseOrderService) AddItem(ctx context.Context, orderID uuid.UUID, req AddPurchaseOrderItemRequest) (*PurchaseOrderResponse, error) {
	return s.editItems(ctx, orderID, func(order *pharmacy.PurchaseOrder) error {
		_, err := order.AddItem(req.MedicineID, req.MedicineName, req.Quantity, valueobject.NewDefaultMoney(req.UnitCost))
		return err
	})
}

// UpdateItem changes quantity and unit cost of a draft order item
func (s *PurchaseOrderService) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, req UpdatePurchaseOrderItemRequest) (*PurchaseOrderResponse, error) {
	return s.editItems(ctx, orderID, func(order *pharmacy.PurchaseOrder) error {
		return order.UpdateItem(itemID, req.Quantity, valueobject.NewDefaultMoney(req.UnitCost))
	})
}

// RemoveItem removes an item from a draft purchase order
func (s *PurchaseOrderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.editItems(ctx, orderID, func(order *pharmacy.PurchaseOrder) error {
		return order.RemoveItem(itemID)
	})
}

func (s *PurchaseOrderService) editItems(ctx context.Context, orderID uuid.UUID, edit func(*pharmacy.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := edit(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Send places a draft order with the supplier
func (s *PurchaseOrderService) Send(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Send(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Receive validates and applies a receipt to an order.
// Any violation rejects the whole receipt with a *pharmacy.ReceiptRejectedError and nothing is stored.
func (s *PurchaseOrderService) Receive(ctx context.Context, orderID uuid.UUID, req ReceivePurchaseOrderRequest) (resp *ReceiveResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "receive",
		telemetry.AttrOrderID.String(orderID.String()),
		telemetry.AttrLineCount.Int(len(req.Items)),
	)
	defer span.End()

	start := time.Now()
	result := telemetry.ReceiptResultApplied
	units := 0
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		}
		if s.businessMetrics != nil {
			s.businessMetrics.RecordReceipt(ctx, result, units, time.Since(start))
		}
	}()

	if req.IdempotencyKey != "" && s.idempotencyStore != nil && s.idempotencyConfig.Enabled {
		key := receiptIdempotencyKey(orderID, req.IdempotencyKey)
		claimed, claimErr := s.idempotencyStore.Claim(ctx, key, s.idempotencyConfig.TTL)
		if claimErr != nil {
			return nil, fmt.Errorf("failed to check receipt idempotency: %w", claimErr)
		}
		if !claimed {
			result = telemetry.ReceiptResultDuplicate
			return nil, shared.ErrDuplicateSubmission
		}
		// Nothing was stored when Receive fails, so the client may retry with the same key.
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotencyStore.Release(context.WithoutCancel(ctx), key); relErr != nil {
				s.logger.Warn("Failed to release receipt idempotency key",
					zap.String("order_id", orderID.String()),
					zap.Error(relErr),
				)
			}
		}()
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		result = telemetry.ReceiptResultRejected
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrPONumber.String(order.PONumber),
		telemetry.AttrOrderStatus.String(string(order.Status)),
	)

	event := toReceiptEvent(req, s.clock.Now())
	next, err := s.engine.Apply(*order, event)
	if err != nil {
		result = telemetry.ReceiptResultRejected
		var rejected *pharmacy.ReceiptRejectedError
		if errors.As(err, &rejected) {
			span.SetAttributes(telemetry.AttrViolations.Int(len(rejected.Violations)))
			if s.businessMetrics != nil {
				s.businessMetrics.RecordViolations(ctx, violationKinds(rejected))
			}
		}
		return nil, err
	}

	if err = s.orderRepo.SaveWithLock(ctx, &next); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			result = telemetry.ReceiptResultConflict
		} else {
			result = telemetry.ReceiptResultRejected
		}
		return nil, err
	}

	var lines []pharmacy.ReceivedLineInfo
	for _, evt := range next.GetDomainEvents() {
		if received, ok := evt.(*pharmacy.PurchaseOrderReceivedEvent); ok {
			lines = received.Lines
		}
	}
	for _, l := range lines {
		units += l.Quantity
	}

	if next.Status == pharmacy.PurchaseOrderStatusReceived && s.businessMetrics != nil {
		s.businessMetrics.RecordOrderCompleted(ctx)
	}
	span.SetAttributes(telemetry.AttrOrderStatus.String(string(next.Status)))

	s.publishEvents(ctx, &next)

	return &ReceiveResultResponse{
		Order:          ToPurchaseOrderResponse(&next),
		ReceivedLines:  ToReceivedLineResponses(lines),
		PreviousStatus: string(order.Status),
	}, nil
}

// PreviewReceipt reports violations, warnings and the projected progress of a receipt without storing anything
func (s *PurchaseOrderService) PreviewReceipt(ctx context.Context, orderID uuid.UUID, req ReceivePurchaseOrderRequest) (*ReceiptPreviewResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	event := toReceiptEvent(req, s.clock.Now())
	violations := s.engine.Validator().Validate(*order, event)

	preview := &ReceiptPreviewResponse{
		Valid:      len(violations) == 0,
		Violations: ToViolationResponses(violations),
		Warnings:   pharmacy.ItemsWithWarnings(*order, event),
		Current:    pharmacy.Summarize(*order),
	}

	if preview.Valid {
		next, err := s.engine.Apply(*order, event)
		if err != nil {
			return nil, err
		}
		projected := pharmacy.Summarize(next)
		preview.Projected = &projected
		preview.ProjectedStatus = string(next.Status)
	}

	return preview, nil
}

// Cancel cancels a purchase order. Quantities already received stay recorded.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := s.engine.Cancel(*order, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, &next); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderCancelled(ctx, string(order.Status))
	}
	s.publishEvents(ctx, &next)

	response := ToPurchaseOrderResponse(&next)
	return &response, nil
}

// GetSummary returns the receiving progress of an order
func (s *PurchaseOrderService) GetSummary(ctx context.Context, orderID uuid.UUID) (*pharmacy.Summary, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	summary := pharmacy.Summarize(*order)
	return &summary, nil
}

// GetReceiptHistory returns the receiving audit trail of an order, oldest first
func (s *PurchaseOrderService) GetReceiptHistory(ctx context.Context, orderID uuid.UUID) ([]ReceiptLogResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	if s.receiptLogRepo == nil {
		return []ReceiptLogResponse{}, nil
	}
	logs, err := s.receiptLogRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToReceiptLogResponses(logs), nil
}

// GetStatusSummary counts purchase orders per status
func (s *PurchaseOrderService) GetStatusSummary(ctx context.Context) (*PurchaseOrderStatusSummary, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PurchaseOrderStatusSummary{
		Draft:     counts[pharmacy.PurchaseOrderStatusDraft],
		Sent:      counts[pharmacy.PurchaseOrderStatusSent],
		Partial:   counts[pharmacy.PurchaseOrderStatusPartial],
		Received:  counts[pharmacy.PurchaseOrderStatusReceived],
		Cancelled: counts[pharmacy.PurchaseOrderStatusCancelled],
	}
	summary.Total = summary.Draft + summary.Sent + summary.Partial + summary.Received + summary.Cancelled
	summary.PendingReceipt = summary.Sent + summary.Partial
	return summary, nil
}

// OrderStatusCounts reports order counts keyed by status name for periodic metric collection
func (s *PurchaseOrderService) OrderStatusCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(pharmacy.AllPurchaseOrderStatuses()))
	for _, status := range pharmacy.AllPurchaseOrderStatuses() {
		out[string(status)] = counts[status]
	}
	return out, nil
}

// publishEvents hands pending domain events to the publisher after a successful save
func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *pharmacy.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish purchase order events",
			zap.String("order_id", order.ID.String()),
			zap.String("po_number", order.PONumber),
			zap.Error(err),
		)
	}
}

func receiptIdempotencyKey(orderID uuid.UUID, key string) string {
	return "po-receipt:" + orderID.String() + ":" + key
}

func violationKinds(err *pharmacy.ReceiptRejectedError) []string {
	kinds := make([]string, 0, len(err.Violations))
	for _, kind := range err.Kinds() {
		kinds = append(kinds, string(kind))
	}
	return kinds
}

// Ensure PurchaseOrderService can feed periodic status metrics
var _ telemetry.OrderStatusProvider = (*PurchaseOrderService)(nil)
