package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hms/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsConfig holds configuration for HTTP metrics middleware.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
}

type httpMetrics struct {
	requests      *telemetry.Counter
	latency       *telemetry.Histogram
	requestBytes  *telemetry.Histogram
	responseBytes *telemetry.Histogram
	inFlight      metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	var (
		m   httpMetrics
		err error
	)
	if m.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if m.latency, err = telemetry.NewHistogram(meter,
		"http_server_request_duration_seconds", "HTTP request latency", "s", telemetry.LatencyBuckets); err != nil {
		return nil, err
	}
	if m.requestBytes, err = telemetry.NewHistogram(meter,
		"http_server_request_size_bytes", "HTTP request body size", "By", telemetry.ByteSizeBuckets); err != nil {
		return nil, err
	}
	if m.responseBytes, err = telemetry.NewHistogram(meter,
		"http_server_response_size_bytes", "HTTP response body size", "By", telemetry.ByteSizeBuckets); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests currently in flight"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// HTTPMetrics collects request count, latency, body sizes and in-flight requests.
// Labels use the route pattern, never the raw path.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), true)
}

// HTTPMetricsWithMeter returns HTTP metrics middleware using an existing meter.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}

	metrics, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.inFlight.Add(ctx, 1)
		c.Next()
		metrics.inFlight.Add(ctx, -1)

		status := c.Writer.Status()
		labels := []attribute.KeyValue{
			telemetry.LabelMethod.String(c.Request.Method),
			telemetry.LabelRoute.String(routePattern(c)),
		}
		metrics.requests.Inc(ctx, append(labels,
			telemetry.LabelStatusCode.Int(status),
			telemetry.LabelStatusClass.String(StatusClass(status)),
		)...)
		metrics.latency.RecordDuration(ctx, time.Since(start), labels...)

		if n := c.Request.ContentLength; n > 0 {
			metrics.requestBytes.Record(ctx, float64(n), labels...)
		}
		if n := c.Writer.Size(); n > 0 {
			metrics.responseBytes.Record(ctx, float64(n), labels...)
		}
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// StatusClass groups a status code as 2xx, 3xx, 4xx or 5xx.
func StatusClass(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other"
	}
}
