package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm output through slog. Statements run with a
// request context are logged with that request's attributes.
type GormLogger struct {
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger(logLevel gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		LogLevel:      logLevel,
		SlowThreshold: slowThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *l
	copied.LogLevel = level
	return &copied
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		FromContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		FromContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		FromContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one statement. Missing rows are expected lookups, not failures.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	log := FromContext(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormlogger.Error:
		sql, rows := fc()
		log.Error("SQL error", sqlAttrs(sql, rows, elapsed, slog.String("error", err.Error()))...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		log.Warn("Slow SQL", sqlAttrs(sql, rows, elapsed, slog.Duration("threshold", l.SlowThreshold))...)
	case l.LogLevel >= gormlogger.Info:
		sql, rows := fc()
		log.Debug("SQL", sqlAttrs(sql, rows, elapsed)...)
	}
}

func sqlAttrs(sql string, rows int64, elapsed time.Duration, extra ...slog.Attr) []any {
	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	for _, a := range extra {
		attrs = append(attrs, a)
	}
	return attrs
}
