// Package logging provides the key-value logger used by use cases and workers.
// Request-scoped fields are read from the context so call sites never thread them.
package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey ContextKey = "request_id"
	// UserIDKey is the context key for user IDs
	UserIDKey ContextKey = "user_id"
)

// Logger wraps a zerolog.Logger with slog-style key-value calls.
type Logger struct {
	zl zerolog.Logger
}

// New wraps zl. The process-wide root logger is usually passed here.
func New(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Nop returns a logger that discards every record.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying the given key-value pairs.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(keyvals).Logger()}
}

// WithContext returns the underlying logger enriched with request and user ids.
func (l *Logger) WithContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return l.zl
	}

	zctx := l.zl.With()
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		zctx = zctx.Str("request_id", requestID)
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		zctx = zctx.Str("user_id", userID)
	}
	return zctx.Logger()
}

func (l *Logger) Debug(msg string, keyvals ...any) { write(l.zl.Debug(), msg, keyvals) }
func (l *Logger) Info(msg string, keyvals ...any)  { write(l.zl.Info(), msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...any)  { write(l.zl.Warn(), msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...any) { write(l.zl.Error(), msg, keyvals) }

// DebugCtx logs a debug message with context
func (l *Logger) DebugCtx(ctx context.Context, msg string, keyvals ...any) {
	zl := l.WithContext(ctx)
	write(zl.Debug(), msg, keyvals)
}

// InfoCtx logs an info message with context
func (l *Logger) InfoCtx(ctx context.Context, msg string, keyvals ...any) {
	zl := l.WithContext(ctx)
	write(zl.Info(), msg, keyvals)
}

// WarnCtx logs a warning message with context
func (l *Logger) WarnCtx(ctx context.Context, msg string, keyvals ...any) {
	zl := l.WithContext(ctx)
	write(zl.Warn(), msg, keyvals)
}

// ErrorCtx logs an error message with context
func (l *Logger) ErrorCtx(ctx context.Context, msg string, keyvals ...any) {
	zl := l.WithContext(ctx)
	write(zl.Error(), msg, keyvals)
}

// write is a no-op for events below the active level, where zerolog hands back nil.
func write(e *zerolog.Event, msg string, keyvals []any) {
	if e == nil {
		return
	}
	if len(keyvals) > 0 {
		e = e.Fields(keyvals)
	}
	e.Msg(msg)
}
