package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBuffered(level slog.Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return New(slog.New(h)), &buf
}

func TestRedacted(t *testing.T) {
	l, buf := newBuffered(slog.LevelInfo)
	l.Info(context.Background(), "urs generated", Redacted("seed"))
	require.Contains(t, buf.String(), "seed="+Placeholder())
}

func TestWith(t *testing.T) {
	l, buf := newBuffered(slog.LevelDebug)
	l.With("curve", "BN254").Debug(context.Background(), "allocated")
	out := buf.String()
	require.Contains(t, out, "curve=BN254")
	require.Contains(t, out, "level=DEBUG")
}

func TestZerologBridge(t *testing.T) {
	l, buf := newBuffered(slog.LevelDebug)
	z := Zerolog(l)

	z.Info().Str("curve", "bn254").Int("nbConstraints", 4).Msg("compiled")
	z.Debug().Msg("setup")
	z.Warn().Msg("slow")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "level=INFO")
	require.Contains(t, lines[0], "msg=compiled")
	require.Contains(t, lines[0], "curve=bn254")
	require.Contains(t, lines[0], "nbConstraints=4")
	require.NotContains(t, lines[0], "level=info")
	require.Contains(t, lines[1], "level=DEBUG")
	require.Contains(t, lines[2], "level=WARN")
}

func TestDiscard(t *testing.T) {
	l := Discard().With("k", "v")
	l.Error(context.Background(), "dropped")
}

type name string

func (n name) String() string { return string(n) }

func TestObjectAttrs(t *testing.T) {
	l, buf := newBuffered(slog.LevelInfo)
	l.Info(context.Background(), "proof generated",
		Curve(name("BLS12_381")), Kind(name("proof")), Handle(42), Redacted("witness"))
	out := buf.String()
	require.Contains(t, out, KeyCurve+"=BLS12_381")
	require.Contains(t, out, KeyKind+"=proof")
	require.Contains(t, out, KeyHandle+"=42")
	require.Contains(t, out, "witness="+Placeholder())
}

func TestDiscardedBelowLevel(t *testing.T) {
	l, buf := newBuffered(slog.LevelWarn)
	l.Info(context.Background(), "index built", Curve(name("BN254")))
	require.Empty(t, buf.String())
	l.Warn(context.Background(), "slow setup", Curve(name("BN254")))
	require.Contains(t, buf.String(), "level=WARN")
}
