package vector

import (
	"math/big"
	"testing"

	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/stretchr/testify/require"
)

func mustVector(t *testing.T, c curve.Curve, vals ...uint64) *Vector {
	t.Helper()
	v, err := FromUint64s(c, vals...)
	require.NoError(t, err)
	return v
}

func hostList(t *testing.T, v *Vector) []string {
	t.Helper()
	xs, err := v.ToHostList()
	require.NoError(t, err)
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = x.String()
	}
	return out
}

func TestBuildAndRead(t *testing.T) {
	for _, c := range curve.All() {
		t.Run(c.String(), func(t *testing.T) {
			a, err := curve.NewScalarFromUint64(c, 3)
			require.NoError(t, err)
			b, err := curve.NewScalarFromUint64(c, 4)
			require.NoError(t, err)

			v, err := New(c, a, b)
			require.NoError(t, err)
			require.Equal(t, c, v.Curve())

			n, err := v.Len()
			require.NoError(t, err)
			require.Equal(t, 2, n)

			got, err := v.Get(1)
			require.NoError(t, err)
			eq, err := got.Equal(b)
			require.NoError(t, err)
			require.True(t, eq)

			_, err = v.Get(2)
			require.ErrorIs(t, err, plonk.ErrIndexOutOfRange)
			_, err = v.Get(-1)
			require.ErrorIs(t, err, plonk.ErrIndexOutOfRange)

			// freeing the source scalar does not affect the copy
			b.Free()
			require.Equal(t, []string{"3", "4"}, hostList(t, v))
		})
	}
}

func TestFromBigIntsReduces(t *testing.T) {
	c := curve.BN254
	v, err := FromBigInts(c, []*big.Int{new(big.Int).Add(c.Modulus(), big.NewInt(5)), big.NewInt(-1)})
	require.NoError(t, err)
	xs, err := v.ToHostList()
	require.NoError(t, err)
	require.Equal(t, "5", xs[0].String())
	require.Zero(t, xs[1].Cmp(new(big.Int).Sub(c.Modulus(), big.NewInt(1))))

	_, err = FromBigInts(c, []*big.Int{nil})
	require.Error(t, err)
}

func TestSetAppendFreeze(t *testing.T) {
	c := curve.BLS12_381
	v := mustVector(t, c, 1, 2, 3)
	nine, err := curve.NewScalarFromUint64(c, 9)
	require.NoError(t, err)

	require.NoError(t, v.Set(0, nine))
	require.NoError(t, v.Append(nine, nine))
	require.Equal(t, []string{"9", "2", "3", "9", "9"}, hostList(t, v))
	require.ErrorIs(t, v.Set(5, nine), plonk.ErrIndexOutOfRange)

	frozen, err := v.Frozen()
	require.NoError(t, err)
	require.False(t, frozen)

	require.NoError(t, v.Freeze())
	require.NoError(t, v.Freeze())
	require.ErrorIs(t, v.Set(0, nine), plonk.ErrFrozen)
	require.ErrorIs(t, v.Append(nine), plonk.ErrFrozen)
	require.Equal(t, []string{"9", "2", "3", "9", "9"}, hostList(t, v))

	// derived vectors start unfrozen
	s, err := v.Slice(1, 3)
	require.NoError(t, err)
	require.NoError(t, s.Set(0, nine))
	require.Equal(t, []string{"9", "3"}, hostList(t, s))
	require.Equal(t, "2", hostList(t, v)[1])
}

func TestConsumeFreezes(t *testing.T) {
	v := mustVector(t, curve.BN254, 4, 5)
	elems, err := v.Consume()
	require.NoError(t, err)
	require.Len(t, elems, 2)

	frozen, err := v.Frozen()
	require.NoError(t, err)
	require.True(t, frozen)
}

func TestSliceConcat(t *testing.T) {
	c := curve.BN254
	v := mustVector(t, c, 10, 11, 12, 13, 14)
	n := 5
	for k := 0; k <= n; k++ {
		lo, err := v.Slice(0, k)
		require.NoError(t, err)
		hi, err := v.Slice(k, n)
		require.NoError(t, err)
		joined, err := lo.Concat(hi)
		require.NoError(t, err)
		eq, err := joined.Equal(v)
		require.NoError(t, err)
		require.True(t, eq, "split at %d", k)
	}

	_, err := v.Slice(3, 2)
	require.ErrorIs(t, err, plonk.ErrIndexOutOfRange)
	_, err = v.Slice(0, 6)
	require.ErrorIs(t, err, plonk.ErrIndexOutOfRange)

	twice, err := v.Concat(v)
	require.NoError(t, err)
	m, err := twice.Len()
	require.NoError(t, err)
	require.Equal(t, 10, m)
}

func TestMixedConfigurations(t *testing.T) {
	a := mustVector(t, curve.BN254, 1)
	b := mustVector(t, curve.BLS12_377, 1)

	_, err := a.Concat(b)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)
	_, err = a.Equal(b)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)

	s, err := curve.NewScalarFromUint64(curve.BLS12_377, 2)
	require.NoError(t, err)
	require.ErrorIs(t, a.Set(0, s), plonk.ErrConfigurationMismatch)
	require.ErrorIs(t, a.Append(s), plonk.ErrConfigurationMismatch)
	require.Equal(t, []string{"1"}, hostList(t, a))

	_, err = New(curve.BN254, s)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)
}

func TestFreedVector(t *testing.T) {
	v := mustVector(t, curve.BN254, 1, 2)
	v.Free()
	v.Free()
	_, err := v.Len()
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
	_, err = v.ToHostList()
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)

	var nilVec *Vector
	_, err = nilVec.Len()
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
}
