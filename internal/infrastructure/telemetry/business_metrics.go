package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ReceiptResult labels the outcome of a receipt submission
type ReceiptResult string

const (
	ReceiptResultApplied   ReceiptResult = "applied"
	ReceiptResultRejected  ReceiptResult = "rejected"
	ReceiptResultDuplicate ReceiptResult = "duplicate"
	ReceiptResultConflict  ReceiptResult = "conflict"
)

// OrderStatusProvider supplies purchase order counts per status for periodic collection.
// It keeps the telemetry layer independent of the pharmacy domain.
type OrderStatusProvider interface {
	OrderStatusCounts(ctx context.Context) (map[string]int64, error)
}

// BusinessMetrics tracks purchase order receiving and service pricing activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	orderCreatedTotal       *Counter
	orderAmountTotal        *Counter
	orderCompletedTotal     *Counter
	orderCancelledTotal     *Counter
	receiptTotal            *Counter
	receiptUnitsTotal       *Counter
	receiptViolationTotal   *Counter
	receiptDuration         *Histogram
	servicePriceChangeTotal *Counter
	negativeFinalCostTotal  *Counter

	ordersByStatus *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	statusProvider OrderStatusProvider
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter          metric.Meter
	Logger         *zap.Logger
	StatusProvider OrderStatusProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		statusProvider: cfg.StatusProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.orderCreatedTotal, "hms_purchase_order_created_total", "Total number of purchase orders created", "{orders}"},
		{&bm.orderAmountTotal, "hms_purchase_order_amount_total", "Total ordered amount in minor currency units", "{cents}"},
		{&bm.orderCompletedTotal, "hms_purchase_order_completed_total", "Purchase orders that reached received status", "{orders}"},
		{&bm.orderCancelledTotal, "hms_purchase_order_cancelled_total", "Purchase orders cancelled", "{orders}"},
		{&bm.receiptTotal, "hms_receipt_total", "Receipt submissions by outcome", "{receipts}"},
		{&bm.receiptUnitsTotal, "hms_receipt_units_total", "Units received across all applied receipts", "{units}"},
		{&bm.receiptViolationTotal, "hms_receipt_violation_total", "Receipt validation violations by kind", "{violations}"},
		{&bm.servicePriceChangeTotal, "hms_service_price_change_total", "Department service price changes", "{changes}"},
		{&bm.negativeFinalCostTotal, "hms_service_negative_final_cost_total", "Service cost calculations with a negative final cost", "{calculations}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.receiptDuration, err = NewHistogram(cfg.Meter,
		"hms_receipt_apply_duration_seconds", "Time to validate, apply and persist a receipt", "s", LatencyBuckets)
	if err != nil {
		return nil, err
	}

	bm.ordersByStatus, err = NewGauge(cfg.Meter, "hms_purchase_orders", "Current purchase orders per status", "{orders}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Purchase Order Metrics
// =============================================================================

// RecordOrderCreated records a new purchase order and its amount.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, amount decimal.Decimal) {
	bm.orderCreatedTotal.Inc(ctx)
	bm.orderAmountTotal.Add(ctx, amount.Shift(2).IntPart())
}

// RecordOrderCompleted records an order reaching received status.
func (bm *BusinessMetrics) RecordOrderCompleted(ctx context.Context) {
	bm.orderCompletedTotal.Inc(ctx)
}

// RecordOrderCancelled records a cancellation, labelled with the status it left.
func (bm *BusinessMetrics) RecordOrderCancelled(ctx context.Context, previousStatus string) {
	bm.orderCancelledTotal.Inc(ctx, LabelOrderStatus.String(previousStatus))
}

// RecordReceipt records a receipt submission outcome.
// units is only counted for applied receipts.
func (bm *BusinessMetrics) RecordReceipt(ctx context.Context, result ReceiptResult, units int, elapsed time.Duration) {
	bm.receiptTotal.Inc(ctx, LabelResult.String(string(result)))
	bm.receiptDuration.RecordDuration(ctx, elapsed, LabelResult.String(string(result)))
	if result == ReceiptResultApplied && units > 0 {
		bm.receiptUnitsTotal.Add(ctx, int64(units))
	}
}

// RecordViolations counts each violation kind of a rejected receipt.
func (bm *BusinessMetrics) RecordViolations(ctx context.Context, kinds []string) {
	for _, kind := range kinds {
		bm.receiptViolationTotal.Inc(ctx, LabelViolationKind.String(kind))
	}
}

// =============================================================================
// Department Service Metrics
// =============================================================================

// RecordPriceChange records a department service price change.
func (bm *BusinessMetrics) RecordPriceChange(ctx context.Context, departmentID string) {
	bm.servicePriceChangeTotal.Inc(ctx, LabelDepartment.String(departmentID))
}

// RecordNegativeFinalCost records a cost calculation whose discount drove the final cost below zero.
func (bm *BusinessMetrics) RecordNegativeFinalCost(ctx context.Context, departmentID string) {
	bm.negativeFinalCostTotal.Inc(ctx, LabelDepartment.String(departmentID))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection samples order counts per status every interval until Stop.
// Only the first call starts the collector.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.statusProvider == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	bm.collectOnce.Do(func() {
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.CollectOrderStatus(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-bm.stopChan:
			return
		case <-ticker.C:
			bm.CollectOrderStatus(ctx)
		}
	}
}

// CollectOrderStatus records the current order count per status once.
func (bm *BusinessMetrics) CollectOrderStatus(ctx context.Context) {
	if bm.statusProvider == nil {
		return
	}
	counts, err := bm.statusProvider.OrderStatusCounts(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect purchase order status metrics", zap.Error(err))
		return
	}
	for status, count := range counts {
		bm.ordersByStatus.Record(ctx, count, LabelOrderStatus.String(status))
	}
}

// Stop stops periodic collection. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Errors
// =============================================================================

// MetricsError is returned when metrics cannot be initialised.
type MetricsError struct {
	Op  string
	Msg string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Msg
}

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Msg: "meter cannot be nil"}
