package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func tracedRouter(status int) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}))
	router.Use(SpanErrorMarker())
	router.Use(TracingAttributeInjector())
	router.POST("/orders/:id/receive", func(c *gin.Context) {
		c.Status(status)
	})
	return router
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.FailNow(t, "span not found", name)
	return nil
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_EnrichesSpan(t *testing.T) {
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodPost, "/orders/abc/receive", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	req.Header.Set(IdempotencyKeyHeader, "receipt-1")
	w := httptest.NewRecorder()
	tracedRouter(http.StatusOK).ServeHTTP(w, req)

	span := findSpan(t, sr, "POST /orders/:id/receive")
	attrs := attrMap(span)
	assert.Equal(t, "req-42", attrs["request_id"].AsString())
	assert.Equal(t, "abc", attrs["resource_id"].AsString())
	assert.True(t, attrs["idempotency_key_present"].AsBool())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status      int
		description string
	}{
		{http.StatusUnprocessableEntity, "Unprocessable Entity"},
		{http.StatusConflict, "Conflict"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusBadRequest, "Client Error"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			sr := setupTestTracer(t)

			w := httptest.NewRecorder()
			tracedRouter(tt.status).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/abc/receive", nil))

			span := findSpan(t, sr, "POST /orders/:id/receive")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
		})
	}
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.Use(SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.Equal(t, "hms-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}
