package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the standardized structured logging key for experiment session identifiers.
const FieldSessionID = "session_id"

// WithSessionID returns a logger whose records carry the session identifier,
// plus the phase and trial stamped on the context passed to the *Context
// logging methods.
func WithSessionID(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return slog.New(newSessionHandler(logger.Handler(), sessionID))
}

type sessionHandler struct {
	base      slog.Handler
	sessionID string
	// bound lists keys already attached through WithAttrs.
	bound map[string]bool
}

func newSessionHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &sessionHandler{base: base, sessionID: sessionID}
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	present := map[string]bool{}
	record.Attrs(func(attr slog.Attr) bool {
		present[attr.Key] = true
		return true
	})
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	for _, attr := range ContextFields(ctx) {
		if !present[attr.Key] && !h.bound[attr.Key] {
			record.AddAttrs(attr)
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]bool, len(h.bound)+len(attrs))
	for k := range h.bound {
		bound[k] = true
	}
	for _, attr := range attrs {
		bound[attr.Key] = true
	}
	return &sessionHandler{base: h.base.WithAttrs(attrs), sessionID: h.sessionID, bound: bound}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{base: h.base.WithGroup(name), sessionID: h.sessionID, bound: h.bound}
}
