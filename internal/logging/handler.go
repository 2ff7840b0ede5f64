package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

// PrettyHandler provides colorized console output for TTY.
type PrettyHandler struct {
	mu     sync.Mutex
	w      io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string

	levelColors map[slog.Level]*color.Color
	keyColor    *color.Color
}

// NewPrettyHandler creates a new pretty handler.
func NewPrettyHandler(w io.Writer, level slog.Level, noColor bool) *PrettyHandler {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		}
		return c
	}
	return &PrettyHandler{
		w:     w,
		level: level,
		levelColors: map[slog.Level]*color.Color{
			slog.LevelDebug: mk(color.FgHiBlack),
			slog.LevelInfo:  mk(color.FgBlue),
			slog.LevelWarn:  mk(color.FgYellow),
			slog.LevelError: mk(color.FgRed),
		},
		keyColor: mk(color.FgCyan),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := fmt.Sprintf("%s %s %s",
		r.Time.Format("15:04:05"), h.formatLevel(r.Level), r.Message)

	for _, attr := range h.attrs {
		line += h.formatAttr(attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += h.formatAttr(a)
		return true
	})

	_, err := fmt.Fprintln(h.w, line)
	return err
}

// WithAttrs returns a new handler with attrs.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandler := h.clone()
	newHandler.attrs = make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newHandler.attrs, h.attrs)
	copy(newHandler.attrs[len(h.attrs):], attrs)
	return newHandler
}

// WithGroup returns a new handler with a group.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	newHandler := h.clone()
	newHandler.groups = append(newHandler.groups, name)
	return newHandler
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		w:           h.w,
		level:       h.level,
		attrs:       h.attrs,
		groups:      h.groups,
		levelColors: h.levelColors,
		keyColor:    h.keyColor,
	}
}

func (h *PrettyHandler) formatLevel(level slog.Level) string {
	label := level.String()
	if len(label) > 3 {
		label = label[:3]
	}
	if c, ok := h.levelColors[level]; ok {
		return c.Sprint(label)
	}
	return label
}

func (h *PrettyHandler) formatAttr(a slog.Attr) string {
	if a.Value.Kind() == slog.KindGroup {
		var result string
		for _, attr := range a.Value.Group() {
			result += h.formatAttr(attr)
		}
		return result
	}

	key := a.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	return fmt.Sprintf(" %s=%v", h.keyColor.Sprint(key), a.Value.Any())
}
