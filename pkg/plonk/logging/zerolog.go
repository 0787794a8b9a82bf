package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog"
)

// Zerolog returns a zerolog.Logger whose events are forwarded to l. Event
// fields become slog attributes in key order; the level and time fields are
// dropped.
func Zerolog(l Logger) zerolog.Logger {
	return zerolog.New(&levelWriter{log: l})
}

type levelWriter struct {
	log Logger
}

func (w *levelWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	msg, args := decodeEvent(p)
	ctx := context.Background()
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel, zerolog.NoLevel:
		w.log.Debug(ctx, msg, args...)
	case zerolog.InfoLevel:
		w.log.Info(ctx, msg, args...)
	case zerolog.WarnLevel:
		w.log.Warn(ctx, msg, args...)
	default:
		w.log.Error(ctx, msg, args...)
	}
	return len(p), nil
}

func decodeEvent(p []byte) (string, []any) {
	var fields map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &fields); err != nil {
		return string(bytes.TrimSpace(p)), nil
	}
	msg, _ := fields[zerolog.MessageFieldName].(string)
	delete(fields, zerolog.MessageFieldName)
	delete(fields, zerolog.LevelFieldName)
	delete(fields, zerolog.TimestampFieldName)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return msg, args
}
