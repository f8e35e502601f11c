package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric label keys. Span attributes live in tracing.go.
const (
	LabelMethod        = attribute.Key("http.method")
	LabelRoute         = attribute.Key("http.route")
	LabelStatusCode    = attribute.Key("http.status_code")
	LabelStatusClass   = attribute.Key("http.status_class")
	LabelResult        = attribute.Key("result")
	LabelViolationKind = attribute.Key("violation_kind")
	LabelOrderStatus   = attribute.Key("order_status")
	LabelDepartment    = attribute.Key("department_id")
)

// Histogram bucket boundaries.
var (
	// LatencyBuckets suit request and receipt latencies, in seconds.
	LatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	// FastLatencyBuckets suit in-process work such as cost calculation, in seconds.
	FastLatencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}
	// ByteSizeBuckets suit request and response bodies.
	ByteSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}
)

// Counter is a monotonically increasing int64 metric.
type Counter struct {
	inst metric.Int64Counter
}

// NewCounter registers a counter on meter.
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	inst, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("register counter %s: %w", name, err)
	}
	return &Counter{inst: inst}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, labels ...attribute.KeyValue) {
	c.inst.Add(ctx, n, metric.WithAttributes(labels...))
}

func (c *Counter) Inc(ctx context.Context, labels ...attribute.KeyValue) {
	c.Add(ctx, 1, labels...)
}

// Histogram is a float64 distribution.
type Histogram struct {
	inst metric.Float64Histogram
}

// NewHistogram registers a histogram on meter. Empty buckets keep the SDK defaults.
func NewHistogram(meter metric.Meter, name, description, unit string, buckets []float64) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(description),
		metric.WithUnit(unit),
	}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	inst, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("register histogram %s: %w", name, err)
	}
	return &Histogram{inst: inst}, nil
}

func (h *Histogram) Record(ctx context.Context, v float64, labels ...attribute.KeyValue) {
	h.inst.Record(ctx, v, metric.WithAttributes(labels...))
}

// RecordDuration records d in seconds.
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, labels ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), labels...)
}

// Gauge holds the last observed int64 value per label set.
type Gauge struct {
	inst metric.Int64Gauge
}

// NewGauge registers a gauge on meter.
func NewGauge(meter metric.Meter, name, description, unit string) (*Gauge, error) {
	inst, err := meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("register gauge %s: %w", name, err)
	}
	return &Gauge{inst: inst}, nil
}

func (g *Gauge) Record(ctx context.Context, v int64, labels ...attribute.KeyValue) {
	g.inst.Record(ctx, v, metric.WithAttributes(labels...))
}
