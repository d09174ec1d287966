package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger implements gorm.io/gorm/logger.Interface on top of slog.
// Lookups that find nothing are expected (unknown slugs) and are not logged as errors.
type GormLogger struct {
	logLevel      logger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(level string) *GormLogger {
	var lvl logger.LogLevel
	switch level {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	default:
		lvl = logger.Warn
	}
	return &GormLogger{logLevel: lvl, slowThreshold: 200 * time.Millisecond}
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &GormLogger{logLevel: level, slowThreshold: g.slowThreshold}
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= logger.Info {
		FromContext(ctx).Info("gorm info", "msg_detail", msg, "data", data)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= logger.Warn {
		FromContext(ctx).Warn("gorm warn", "msg_detail", msg, "data", data)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= logger.Error {
		FromContext(ctx).Error("gorm error", "msg_detail", msg, "data", data)
	}
}

// Trace logs SQL with its variables, rows affected and elapsed time.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.logLevel == logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		"sql", sql,
		"rows", rows,
		"elapsed_ms", float64(elapsed.Microseconds()) / 1000.0,
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, context.Canceled):
		if g.logLevel >= logger.Error {
			FromContext(ctx).Error("gorm trace", append(attrs, "err", err)...)
		}
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		if g.logLevel >= logger.Warn {
			attrs = append(attrs, "slow", true, "threshold_ms", float64(g.slowThreshold.Microseconds())/1000.0)
			FromContext(ctx).Warn("gorm trace slow", attrs...)
		}
	case g.logLevel >= logger.Info:
		FromContext(ctx).Debug("gorm trace", attrs...)
	}
}
