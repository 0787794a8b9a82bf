// Package logging is the log facade of plonk-go.
//
// Records describe handle operations, so they share three attributes: the
// curve configuration (Curve), the object kind (Kind) and the registry
// handle id (Handle). Payloads never appear in a record.
//
// # Logger Interface
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Default Implementation
//
//	logger := logging.New(nil) // slog.Default()
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	logger = logging.New(slog.New(handler))
//
// # Redaction
//
// Witness values and setup seeds are never logged. Call sites that want to
// record their presence use Redacted:
//
//	logger.Info(ctx, "urs generated", logging.Curve(c), logging.Handle(id), logging.Redacted("seed"))
//	// curve=BN254 handle=7 seed=[redacted]
//
// # gnark Output
//
// gnark writes its own diagnostics through a zerolog logger. Zerolog returns
// a zerolog.Logger that forwards those events to a Logger so that a single
// handler sees everything:
//
//	gnarklogger.Set(logging.Zerolog(logger))
package logging
