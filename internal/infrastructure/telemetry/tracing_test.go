package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hms/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs a span recorder as the global tracer provider for the test.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "receipt_engine.apply",
		telemetry.AttrPONumber.String("PO-2026-00001"),
		telemetry.AttrLineCount.Int(3),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "receipt_engine.apply", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, telemetry.TracerName, spans[0].InstrumentationScope().Name)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "PO-2026-00001", attrs[telemetry.AttrPONumber].AsString())
	assert.Equal(t, int64(3), attrs[telemetry.AttrLineCount].AsInt64())
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parent := telemetry.StartServiceSpan(context.Background(), "purchase_order", "receive")
	_, child := telemetry.StartSpan(ctx, "event.publish")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "event.publish", spans[0].Name())
	assert.Equal(t, "purchase_order.receive", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "failing")
	telemetry.RecordError(span, errors.New("receipt rejected"))
	telemetry.RecordError(span, nil)
	span.End()

	s := sr.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "receipt rejected", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, telemetry.TraceID(context.Background()))

	setupTestTracer(t)
	ctx, span := telemetry.StartSpan(context.Background(), "with-trace")
	defer span.End()

	traceID := telemetry.TraceID(ctx)
	assert.Len(t, traceID, 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
}
