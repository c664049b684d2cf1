// Package log contains the slog handlers of ttsgen.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// MsgHandler prints records of exactly one level like fmt.Println,
// the message followed by the attribute values. Records of other levels
// go to next, which may be nil to drop them.
type MsgHandler struct {
	writer io.Writer
	level  slog.Level
	attrs  []slog.Attr
	next   slog.Handler
}

func NewMsgHandler(writer io.Writer, level slog.Level, next slog.Handler) *MsgHandler {
	return &MsgHandler{writer: writer, level: level, next: next}
}

// New returns the logger for a run: info records are plain messages on
// stdout, everything else passing minLevel is a text record on stderr.
func New(stdout, stderr io.Writer, minLevel slog.Level) *slog.Logger {
	next := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: minLevel})
	if minLevel > slog.LevelInfo {
		return slog.New(next)
	}
	return slog.New(NewMsgHandler(stdout, slog.LevelInfo, next))
}

func (h *MsgHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level == h.level {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, level)
}

func (h *MsgHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level != h.level {
		if h.next == nil {
			return nil
		}
		return h.next.Handle(ctx, record)
	}

	_, _ = fmt.Fprint(h.writer, record.Message)
	for _, a := range h.attrs {
		_, _ = fmt.Fprint(h.writer, " ", a.Value)
	}
	record.Attrs(func(a slog.Attr) bool {
		_, _ = fmt.Fprint(h.writer, " ", a.Value)
		return true
	})

	_, err := fmt.Fprintln(h.writer)
	return err
}

func (h *MsgHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.next != nil {
		c.next = h.next.WithAttrs(attrs)
	}
	return &c
}

func (h *MsgHandler) WithGroup(name string) slog.Handler {
	c := *h
	if h.next != nil {
		c.next = h.next.WithGroup(name)
	}
	return &c
}
