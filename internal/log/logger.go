// Package log wraps slog with the request-scoped fields TeleCheck logs:
// correlation ID and session ID.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	CorrelatedIDKey     contextKey = "correlation_id"
	SessionIDKey        contextKey = "session_id"
	LoggerKeyForContext contextKey = "logger"
)

type Logger struct {
	*slog.Logger
}

// NewLoggerWithJSONOutput logs to stdout. LOG_LEVEL picks the level and
// LOG_FORMAT=text switches to the human-readable handler.
func NewLoggerWithJSONOutput() *Logger {
	return NewLoggerFromEnv(os.Stdout)
}

// NewLoggerFromEnv is NewLoggerWithJSONOutput writing to w. The CLI logs to
// stderr so stdout carries only command output.
func NewLoggerFromEnv(w io.Writer) *Logger {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
	}
	return NewLogger(w, level)
}

func NewLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

func NewDiscardLogger() *Logger {
	return NewLogger(io.Discard, slog.LevelError)
}

// ParseLevel defaults to info for empty or unknown names.
func ParseLevel(raw string) slog.Level {
	var level slog.Level
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "warning" {
		name = "warn"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (l *Logger) with(key contextKey, value string) *Logger {
	return &Logger{l.Logger.With(string(key), value)}
}

func (l *Logger) WithCorrelationID(ctx context.Context) *Logger {
	return l.with(CorrelatedIDKey, GetOrGenerateCorrelationID(ctx))
}

func (l *Logger) WithSessionID(sessionID string) *Logger {
	return l.with(SessionIDKey, sessionID)
}

func GenerateCorrelationID() string {
	return uuid.NewString()
}

func GetOrGenerateCorrelationID(ctx context.Context) string {
	if id := stringValue(ctx, CorrelatedIDKey); id != "" {
		return id
	}
	return GenerateCorrelationID()
}

// GetSessionID returns the session bound to ctx by the router, or "".
func GetSessionID(ctx context.Context) string {
	return stringValue(ctx, SessionIDKey)
}

// GetLoggerInstanceFromContext prefers the logger the router injected. Without
// one, fallback (or a stdout logger) is tagged with the context's correlation ID.
func GetLoggerInstanceFromContext(ctx context.Context, fallback *Logger) *Logger {
	if ctx != nil {
		if injected, ok := ctx.Value(LoggerKeyForContext).(*Logger); ok && injected != nil {
			return injected
		}
	}

	if fallback == nil {
		fallback = NewLoggerWithJSONOutput()
	}
	if ctx == nil {
		return fallback
	}
	return fallback.WithCorrelationID(ctx)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}
