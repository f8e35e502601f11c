package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the slow-query threshold when none is configured.
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger implements gormlogger.Interface on zap. Every entry carries the
// request ID and trace of the statement's context. Record-not-found is not an
// error for lookups, so it is never logged.
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewGormLogger logs under the "gorm" name. slow < 0 turns slow-query warnings off,
// slow == 0 uses DefaultSlowQuery.
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	if slow == 0 {
		slow = DefaultSlowQuery
	}
	return &GormLogger{log: log.Named("gorm"), level: level, slow: slow}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, args)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, args)
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, args)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, args []any) {
	if l.level < min {
		return
	}
	l.scoped(ctx).Sugar().Logf(lvl, msg, args...)
}

// Trace logs one executed statement: failures at error, slow statements at warn
// and everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl zapcore.Level
		msg string
	)
	switch {
	case err != nil:
		if l.level < gormlogger.Error || errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		lvl, msg = zapcore.ErrorLevel, "SQL failed"
	case l.slow > 0 && elapsed > l.slow:
		if l.level < gormlogger.Warn {
			return
		}
		lvl, msg = zapcore.WarnLevel, "Slow SQL"
	default:
		if l.level < gormlogger.Info {
			return
		}
		lvl, msg = zapcore.DebugLevel, "SQL"
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	l.scoped(ctx).Log(lvl, msg, fields...)
}

func (l *GormLogger) scoped(ctx context.Context) *zap.Logger {
	log := WithTraceContext(ctx, l.log)
	if id := GetRequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	return log
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
	"debug":  gormlogger.Info,
}

// MapGormLogLevel maps the application log level onto GORM's. Unknown levels map to Warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[level]; ok {
		return l
	}
	return gormlogger.Warn
}
