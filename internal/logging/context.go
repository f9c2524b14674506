package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// IntoContext stores a logger in the context for downstream components.
func IntoContext(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the context logger when present, otherwise the fallback.
// A nil fallback yields a no-op logger so call sites never nil-check.
func WithContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return NewNop()
}
