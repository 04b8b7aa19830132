package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slogGormLogger adapts slog to GORM's logger.Interface. Every statement is
// emitted at debug level with its bind variables already explained into the
// SQL, so a pgml.embed call shows its transformer, input and parameters.
// Level filtering is left to slog.
type slogGormLogger struct {
	logger *slog.Logger
}

// LogMode is a no-op; level filtering is handled by slog.
func (l slogGormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

// Info logs informational messages from GORM.
func (l slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
}

// Warn logs warning messages from GORM.
func (l slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
}

// Error logs error messages from GORM.
func (l slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
}

// maxSQLLength is the maximum length of a SQL string in debug logs before
// it gets truncated with an ellipsis.
const maxSQLLength = 240

// truncateSQL shortens a SQL string for readable log output, replacing the
// middle with "..." when it exceeds maxSQLLength.
func truncateSQL(sql string) string {
	if len(sql) <= maxSQLLength {
		return sql
	}
	half := (maxSQLLength - 3) / 2
	return sql[:half] + "..." + sql[len(sql)-half:]
}

// Trace is called by GORM after every SQL operation. ErrRecordNotFound is the
// normal "no rows" result of First and is logged at debug level.
func (l slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		l.logger.ErrorContext(ctx, "gorm query error",
			"sql", truncateSQL(sql),
			"rows", rows,
			"duration", elapsed,
			"error", err,
		)
		return
	}

	if !l.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	sql, rows := fc()
	l.logger.DebugContext(ctx, "gorm query",
		"sql", truncateSQL(sql),
		"rows", rows,
		"duration", elapsed,
	)
}
