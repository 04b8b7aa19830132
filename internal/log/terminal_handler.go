package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiFaint  = "\033[2m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiPurple = "\033[35m"
)

// TerminalHandler writes one human-readable line per record:
//
//	12:00:01 DEBUG embedding assigned model=Document column=embedding
//
// Colour is added when Color is set.
type TerminalHandler struct {
	Color bool

	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	prefix string
	group  string
}

// NewTerminalHandler returns a handler writing to w without colour.
func NewTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &TerminalHandler{mu: &sync.Mutex{}, w: w, level: level}
}

// Enabled reports whether records at level are written.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(h.paint(ansiFaint, ts.Format(time.TimeOnly)))
	sb.WriteByte(' ')
	sb.WriteString(h.paint(levelColor(r.Level), fmt.Sprintf("%-5s", r.Level.String())))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	sb.WriteString(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(h.format(h.group, a))
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs returns a handler that writes attrs on every record.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	var sb strings.Builder
	sb.WriteString(h.prefix)
	for _, a := range attrs {
		sb.WriteString(h.format(h.group, a))
	}
	c.prefix = sb.String()
	return &c
}

// WithGroup returns a handler that qualifies later keys with name.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = join(h.group, name)
	return &c
}

func (h *TerminalHandler) format(group string, a slog.Attr) string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ""
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := group
		if a.Key != "" {
			inner = join(group, a.Key)
		}
		var sb strings.Builder
		for _, ga := range a.Value.Group() {
			sb.WriteString(h.format(inner, ga))
		}
		return sb.String()
	}
	return " " + h.paint(ansiFaint, join(group, a.Key)+"=") + quote(a.Value)
}

func (h *TerminalHandler) paint(color, s string) string {
	if !h.Color {
		return s
	}
	return color + s + ansiReset
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiBlue
	default:
		return ansiPurple
	}
}

func join(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

func quote(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && (s == "" || strings.ContainsAny(s, " \t\n\"=")) {
		return strconv.Quote(s)
	}
	return s
}
