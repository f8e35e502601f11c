package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application spans
const TracerName = "hms-backend"

// Attribute keys set on application spans
const (
	AttrOrderID      = attribute.Key("hms.order.id")
	AttrPONumber     = attribute.Key("hms.order.po_number")
	AttrOrderStatus  = attribute.Key("hms.order.status")
	AttrLineCount    = attribute.Key("hms.receipt.line_count")
	AttrViolations   = attribute.Key("hms.receipt.violation_count")
	AttrServiceID    = attribute.Key("hms.department_service.id")
	AttrDepartmentID = attribute.Key("hms.department.id")
	AttrEventType    = attribute.Key("hms.event.type")
	AttrAggregateID  = attribute.Key("hms.event.aggregate_id")
)

// StartSpan starts an internal span on the global tracer provider.
// The caller ends the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartServiceSpan starts a span named <service>.<method>, e.g. "purchase_order.receive"
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, attrs...)
}

// RecordError attaches err to the span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the hex trace ID carried by ctx, or "" outside a sampled trace
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
