// Package logger configures the process-wide slog handler and carries
// request-scoped attributes (request id, serving generation) through
// contexts so every log line of a search can be correlated.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	generationKey
)

// Setup installs the default logger writing to stdout. format is "json" or
// "text"; unknown levels fall back to info.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger without installing it.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Component returns the default logger tagged with the component name and
// any extra key/value pairs.
func Component(name string, args ...any) *slog.Logger {
	return slog.Default().With(append([]any{"component", name}, args...)...)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithGeneration records the corpus generation serving the request.
func WithGeneration(ctx context.Context, generationID string) context.Context {
	return context.WithValue(ctx, generationKey, generationID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the default logger carrying whatever request id and
// generation ctx holds.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if gen, ok := ctx.Value(generationKey).(string); ok && gen != "" {
		l = l.With("generation", gen)
	}
	return l
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
