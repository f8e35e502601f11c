package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and a logger carrying it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithUserID stores the acting user (pharmacist, billing clerk) and a logger carrying it
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userIDKey, userID)
	enriched := logger.With(zap.String("user_id", userID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID returns the request ID stored in ctx
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

// GetUserID returns the user ID stored in ctx
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// traceFields returns trace_id and span_id of the active span, if any
func traceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// WithTraceContext adds trace_id and span_id from ctx to logger
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	fields := traceFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// L returns the context logger enriched with trace and user fields.
// Request ID is already part of the stored logger when set via WithRequestID.
//
//	logger.L(ctx).Info("receipt applied", zap.String("po_number", po))
func L(ctx context.Context) *zap.Logger {
	l := WithTraceContext(ctx, FromContext(ctx))
	if userID := GetUserID(ctx); userID != "" {
		l = l.With(zap.String("user_id", userID))
	}
	return l
}
