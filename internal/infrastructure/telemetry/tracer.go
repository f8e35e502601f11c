package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracingConfig configures the OTLP trace pipeline.
// SamplingRatio >= 1 samples everything, <= 0 samples nothing.
type TracingConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

// TracerProvider owns the SDK tracer provider when traces are exported.
type TracerProvider struct {
	sdk *sdktrace.TracerProvider
	log *zap.Logger
}

// NewTracerProvider builds the OTLP/gRPC trace pipeline, installs it globally and
// registers W3C trace-context and baggage propagation. Disabled tracing leaves the
// global no-op provider in place.
func NewTracerProvider(ctx context.Context, cfg TracingConfig, log *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{log: log}
	if !cfg.Enabled {
		log.Info("Trace export disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := serviceResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("Trace export enabled",
		zap.String("endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.String("service", cfg.ServiceName),
	)
	return tp, nil
}

func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Tracer returns a named tracer.
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.sdk == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.sdk.Tracer(name, opts...)
}

// IsEnabled reports whether traces are exported.
func (tp *TracerProvider) IsEnabled() bool {
	return tp.sdk != nil
}

// Shutdown flushes buffered spans and stops the exporter.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, providerStopTimeout)
	defer cancel()

	if err := tp.sdk.Shutdown(ctx); err != nil {
		tp.log.Error("Trace shutdown failed", zap.Error(err))
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	tp.log.Info("Trace exporter stopped")
	return nil
}
