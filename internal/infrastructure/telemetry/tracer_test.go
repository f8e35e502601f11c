package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, TracingConfig{ServiceName: "hms-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, TracingConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "hms-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("test").Start(ctx, "probe")
	span.End()

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{2.5, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{-1, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, samplerFor(tt.ratio).Description())
	}
}
