// Package contextutil carries the request-scoped logger.
package contextutil

import (
	"context"
	"log/slog"
)

type loggerCtxKey struct{}

// LoggerKey is the context key under which the request logger is stored.
func LoggerKey() any {
	return loggerCtxKey{}
}

// WithLogger returns a copy of ctx that carries logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// LoggerFromContext returns the request logger, or the default logger when
// ctx carries none.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
