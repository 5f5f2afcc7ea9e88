package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NoOpLogger discards everything. Used by tests.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewLogger builds the service logger. Development environments get a text
// handler; everything else logs JSON.
func NewLogger(w io.Writer, level, environment string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(environment, "development") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", ServiceName))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
