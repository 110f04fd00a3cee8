package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyLogger    contextKey = "logger"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// NewRun tags ctx and logger with a fresh run id.
func NewRun(ctx context.Context, logger *slog.Logger) (context.Context, *slog.Logger) {
	id := uuid.NewString()
	logger = logger.With("run_id", id)
	ctx = WithRequestID(ctx, id)
	return context.WithValue(ctx, ContextKeyLogger, logger), logger
}

// LoggerFromContext returns fallback when set, else the logger stored by NewRun, else
// slog.Default.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if fallback != nil {
		return fallback
	}
	if logger, ok := ctx.Value(ContextKeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithTimeout creates a context with the specified timeout; a zero timeout only adds cancellation.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
