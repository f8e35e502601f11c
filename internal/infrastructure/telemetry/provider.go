// Package telemetry wires OpenTelemetry tracing and metrics for the hospital backend.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	defaultExportInterval = time.Minute
	providerStopTimeout   = 10 * time.Second
)

// MetricsConfig configures the OTLP metrics pipeline.
// A zero ExportInterval means one minute.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

// MeterProvider owns the SDK meter provider when metrics are exported.
// With metrics disabled it hands out meters from the global (no-op) provider.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
	log *zap.Logger
	cfg MetricsConfig
}

// NewMeterProvider builds the OTLP/gRPC metrics pipeline and installs it globally.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, log *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{log: log, cfg: cfg}
	if !cfg.Enabled {
		log.Info("Metrics export disabled")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metrics exporter: %w", err)
	}

	res, err := serviceResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	mp.sdk = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.sdk)

	log.Info("Metrics export enabled",
		zap.String("endpoint", cfg.CollectorEndpoint),
		zap.Duration("interval", interval),
		zap.String("service", cfg.ServiceName),
	)
	return mp, nil
}

// serviceResource identifies the process to the collector. Tracing and metrics share it.
func serviceResource(name, version string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	return res, nil
}

// Meter returns a named meter.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

// IsEnabled reports whether metrics are exported.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.sdk != nil
}

// Config returns the configuration the provider was built with.
func (mp *MeterProvider) Config() MetricsConfig {
	return mp.cfg
}

// Flush exports everything recorded so far.
func (mp *MeterProvider) Flush(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	return mp.sdk.ForceFlush(ctx)
}

// Shutdown flushes and stops the exporter.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, providerStopTimeout)
	defer cancel()

	if err := mp.sdk.Shutdown(ctx); err != nil {
		mp.log.Error("Metrics shutdown failed", zap.Error(err))
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	mp.log.Info("Metrics exporter stopped")
	return nil
}
