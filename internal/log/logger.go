// Package log builds the structured logger used by the pgml command.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/postgresml/pgml-gorm/internal/config"
)

type contextKey struct{}

// Logger wraps slog.Logger with convenience methods.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a Logger writing to w in the configured format and level.
func NewLogger(w io.Writer, cfg config.AppConfig) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel())}

	var handler slog.Handler
	switch cfg.LogFormat() {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		th := NewTerminalHandler(w, opts)
		th.Color = isTerminal(w)
		handler = th
	}
	return &Logger{logger: slog.New(handler)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// ParseLevel maps a level name to a slog.Level. Unknown names are INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// With returns a new Logger with additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// SetDefault installs l as the process-wide slog default.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.logger)
}

// WithAttrs returns a context carrying attributes that FromContext loggers
// attach to every record.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	existing, _ := ctx.Value(contextKey{}).([]any)
	merged := make([]any, 0, len(existing)+len(args))
	merged = append(merged, existing...)
	merged = append(merged, args...)
	return context.WithValue(ctx, contextKey{}, merged)
}

// FromContext returns l extended with the attributes stored in ctx.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	attrs, _ := ctx.Value(contextKey{}).([]any)
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
