// Package attr provides slog attribute helpers shared by every module so log
// keys stay consistent across services.
package attr

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type correlationKey struct{}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

// Error renders err under the "error" key. A nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Ordinal is the 1-based round number.
func Ordinal(ordinal int) slog.Attr { return slog.Int("round_ordinal", ordinal) }

func Username(username string) slog.Attr { return slog.String("username", username) }

// WithCorrelationID stores a fresh correlation id on ctx unless one is present.
func WithCorrelationID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(correlationKey{}).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, uuid.NewString())
}

// CorrelationID returns the id stored by WithCorrelationID, or "" if none.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// ExtractCorrelationID renders the context correlation id as an attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationID(ctx))
}
