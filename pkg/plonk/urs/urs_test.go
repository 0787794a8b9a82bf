package urs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marlinplonk/plonk-go/internal/codec"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/vector"
	"github.com/stretchr/testify/require"
)

func mustURS(t *testing.T, c curve.Curve, size int) *URS {
	t.Helper()
	u, err := Deterministic(context.Background(), c, size, []byte("urs-test"))
	require.NoError(t, err)
	return u
}

func pointsEqual(t *testing.T, a, b *curve.Point) bool {
	t.Helper()
	eq, err := a.Equal(b)
	require.NoError(t, err)
	return eq
}

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestGenerate(t *testing.T) {
	for _, c := range curve.All() {
		t.Run(c.String(), func(t *testing.T) {
			u, err := Generate(context.Background(), c, 8)
			require.NoError(t, err)
			require.Equal(t, 8, u.Size())
			require.Equal(t, c, u.Curve())

			// the first power is the generator
			p0, err := u.Point(0)
			require.NoError(t, err)
			g, err := curve.Generator(c)
			require.NoError(t, err)
			require.True(t, pointsEqual(t, p0, g))

			_, err = u.Point(8)
			require.ErrorIs(t, err, plonk.ErrIndexOutOfRange)
		})
	}
}

func TestGenerateRejects(t *testing.T) {
	_, err := Generate(context.Background(), curve.BN254, 1)
	require.ErrorIs(t, err, plonk.ErrURSTooSmall)

	_, err = Generate(context.Background(), curve.Unknown, 8)
	require.ErrorIs(t, err, plonk.ErrUnsupportedConfiguration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Generate(ctx, curve.BN254, 8)
	require.ErrorIs(t, err, context.Canceled)

	_, err = Deterministic(context.Background(), curve.BN254, 8, nil)
	require.Error(t, err)
}

func TestDeterministic(t *testing.T) {
	a := mustURS(t, curve.BLS12_377, 4)
	b := mustURS(t, curve.BLS12_377, 4)
	pa, err := a.Point(3)
	require.NoError(t, err)
	pb, err := b.Point(3)
	require.NoError(t, err)
	require.True(t, pointsEqual(t, pa, pb))

	other, err := Deterministic(context.Background(), curve.BLS12_377, 4, []byte("other"))
	require.NoError(t, err)
	po, err := other.Point(3)
	require.NoError(t, err)
	require.False(t, pointsEqual(t, pa, po))
}

func TestTruncate(t *testing.T) {
	u := mustURS(t, curve.BN254, 16)
	small, err := u.Truncate(5)
	require.NoError(t, err)
	require.Equal(t, 5, small.Size())

	for i := 0; i < 5; i++ {
		p, err := u.Point(i)
		require.NoError(t, err)
		q, err := small.Point(i)
		require.NoError(t, err)
		require.True(t, pointsEqual(t, p, q), "point %d", i)
	}

	_, err = u.Truncate(17)
	require.ErrorIs(t, err, plonk.ErrURSTooSmall)

	// the truncated copy outlives its source
	u.Free()
	_, err = u.Point(0)
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
	_, err = small.Point(4)
	require.NoError(t, err)
}

func TestCommit(t *testing.T) {
	c := curve.BLS12_381
	u := mustURS(t, c, 8)

	// 2 + 3X commits to 2·G + 3·[τ]G
	v, err := vector.FromUint64s(c, 2, 3)
	require.NoError(t, err)
	got, err := u.Commit(v)
	require.NoError(t, err)

	g, err := u.Point(0)
	require.NoError(t, err)
	tau, err := u.Point(1)
	require.NoError(t, err)
	two, err := curve.NewScalarFromUint64(c, 2)
	require.NoError(t, err)
	three, err := curve.NewScalarFromUint64(c, 3)
	require.NoError(t, err)
	a, err := g.Mul(two)
	require.NoError(t, err)
	b, err := tau.Mul(three)
	require.NoError(t, err)
	want, err := a.Add(b)
	require.NoError(t, err)
	require.True(t, pointsEqual(t, got, want))

	empty, err := vector.New(c)
	require.NoError(t, err)
	inf, err := u.Commit(empty)
	require.NoError(t, err)
	isInf, err := inf.IsInfinity()
	require.NoError(t, err)
	require.True(t, isInf)

	long, err := vector.FromUint64s(c, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	require.NoError(t, err)
	_, err = u.Commit(long)
	require.ErrorIs(t, err, plonk.ErrURSTooSmall)

	foreign, err := vector.FromUint64s(curve.BN254, 1)
	require.NoError(t, err)
	_, err = u.Commit(foreign)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)
}

func TestLagrangeCommitment(t *testing.T) {
	c := curve.BN254
	u := mustURS(t, c, 8)

	// the Lagrange basis sums to the constant polynomial 1
	sum, err := curve.Infinity(c)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		p, err := u.LagrangeCommitment(4, i)
		require.NoError(t, err)
		sum, err = sum.Add(p)
		require.NoError(t, err)
	}
	g, err := curve.Generator(c)
	require.NoError(t, err)
	require.True(t, pointsEqual(t, sum, g))

	_, err = u.LagrangeCommitment(4, 4)
	require.ErrorIs(t, err, plonk.ErrIndexOutOfRange)
	_, err = u.LagrangeCommitment(16, 0)
	require.ErrorIs(t, err, plonk.ErrURSTooSmall)
	_, err = u.LagrangeCommitment(6, 0)
	require.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range curve.All() {
		t.Run(c.String(), func(t *testing.T) {
			u := mustURS(t, c, 4)
			data, err := u.Encode()
			require.NoError(t, err)

			back, err := Decode(c, data)
			require.NoError(t, err)
			require.Equal(t, u.Size(), back.Size())
			for i := 0; i < u.Size(); i++ {
				p, err := u.Point(i)
				require.NoError(t, err)
				q, err := back.Point(i)
				require.NoError(t, err)
				require.True(t, pointsEqual(t, p, q))
			}

			again, err := back.Encode()
			require.NoError(t, err)
			require.Equal(t, data, again)

			conj, ok := c.Conjugate()
			if !ok {
				conj = curve.BN254
				if c == curve.BN254 {
					conj = curve.BLS12_381
				}
			}
			_, err = Decode(conj, data)
			require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())
	u := mustURS(t, curve.BN254, 16)
	require.NoError(t, u.WriteFile("urs.bin"))

	back, err := ReadFile(curve.BN254, "urs.bin")
	require.NoError(t, err)
	require.Equal(t, 16, back.Size())

	data, err := os.ReadFile("urs.bin")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile("short.bin", data[:len(data)/2], 0o600))
	_, err = ReadFile(curve.BN254, "short.bin")
	require.ErrorIs(t, err, plonk.ErrMalformedEncoding)

	// any path the caller names is accepted
	elsewhere := filepath.Join(t.TempDir(), "urs.bin")
	require.NoError(t, u.WriteFile(elsewhere))
	_, err = ReadFile(curve.BN254, elsewhere)
	require.NoError(t, err)
	_, err = ReadFile(curve.BN254, "missing.bin")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeRejectsInflatedLengths(t *testing.T) {
	for _, c := range curve.All() {
		t.Run(c.String(), func(t *testing.T) {
			frame := func(srs []byte) []byte {
				return codec.Encode(codec.Frame{
					Curve:    c.Tag(),
					Kind:     uint32(registry.KindURS),
					Sections: []codec.Section{{Tag: sectionSRS, Data: srs}},
				})
			}

			// a lone length claiming 2^32-1 points
			_, err := Decode(c, frame([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
			require.ErrorIs(t, err, plonk.ErrMalformedEncoding)

			data, err := mustURS(t, c, 8).Encode()
			require.NoError(t, err)
			f, err := codec.Decode(data, c.Tag(), uint32(registry.KindURS))
			require.NoError(t, err)
			srs := bytes.Clone(f.Sections[0].Data)
			copy(srs, []byte{0x00, 0xFF, 0xFF, 0xFF})
			_, err = Decode(c, frame(srs))
			require.ErrorIs(t, err, plonk.ErrMalformedEncoding)
		})
	}
}
