package logging

import (
	"context"
	"fmt"
	"log/slog"
)

const redactedPlaceholder = "[redacted]"

// Keys of the attributes every library record carries where they apply.
const (
	KeyCurve  = "curve"
	KeyKind   = "kind"
	KeyHandle = "handle"
)

// Logger is what the handle wrappers log through: leveled, context-aware
// records with slog-style key/value arguments.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New returns a Logger writing to logger, or to slog.Default() when logger
// is nil.
func New(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return sink{l: logger}
}

// Discard returns a Logger that drops every record. The library starts with
// it until Open installs a real one.
func Discard() Logger { return sink{} }

// sink forwards to an slog.Logger; the zero sink discards.
type sink struct{ l *slog.Logger }

func (s sink) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if s.l == nil {
		return
	}
	s.l.Log(ctx, level, msg, args...)
}

func (s sink) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s sink) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s sink) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s sink) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s sink) With(args ...any) Logger {
	if s.l == nil {
		return s
	}
	return sink{l: s.l.With(args...)}
}

// Curve records the curve configuration an operation ran on.
func Curve(c fmt.Stringer) slog.Attr { return slog.String(KeyCurve, c.String()) }

// Kind records the kind of object a handle refers to.
func Kind(k fmt.Stringer) slog.Attr { return slog.String(KeyKind, k.String()) }

// Handle records a registry handle id. Ids are not secret; payloads are.
func Handle(id uint64) slog.Attr { return slog.Uint64(KeyHandle, id) }

// Redacted stands in for a value that must not reach the log, such as a
// witness or a setup secret.
func Redacted(key string) slog.Attr {
	return slog.String(key, redactedPlaceholder)
}

// Placeholder is the text Redacted writes in place of the value.
func Placeholder() string {
	return redactedPlaceholder
}
