package curve

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/stretchr/testify/require"
)

func mustScalar(t *testing.T, c Curve, v uint64) *Scalar {
	t.Helper()
	s, err := NewScalarFromUint64(c, v)
	require.NoError(t, err)
	return s
}

func TestScalarArithmetic(t *testing.T) {
	for _, c := range All() {
		t.Run(c.String(), func(t *testing.T) {
			a := mustScalar(t, c, 7)
			b := mustScalar(t, c, 5)

			sum, err := a.Add(b)
			require.NoError(t, err)
			require.Equal(t, "12", sum.String())

			diff, err := b.Sub(a)
			require.NoError(t, err)
			v, err := diff.BigInt()
			require.NoError(t, err)
			require.Zero(t, v.Cmp(new(big.Int).Sub(c.Modulus(), big.NewInt(2))))

			prod, err := a.Mul(b)
			require.NoError(t, err)
			require.Equal(t, "35", prod.String())

			q, err := prod.Div(b)
			require.NoError(t, err)
			eq, err := q.Equal(a)
			require.NoError(t, err)
			require.True(t, eq)

			zero, err := Zero(c)
			require.NoError(t, err)
			_, err = a.Div(zero)
			require.ErrorIs(t, err, plonk.ErrDivisionByZero)

			inv, err := a.Inverse()
			require.NoError(t, err)
			one, err := inv.Mul(a)
			require.NoError(t, err)
			want, err := One(c)
			require.NoError(t, err)
			eq, err = one.Equal(want)
			require.NoError(t, err)
			require.True(t, eq)

			sq, err := a.Square()
			require.NoError(t, err)
			require.Equal(t, "49", sq.String())

			neg, err := a.Neg()
			require.NoError(t, err)
			back, err := neg.Add(a)
			require.NoError(t, err)
			isZero, err := back.IsZero()
			require.NoError(t, err)
			require.True(t, isZero)

			cmp, err := a.Cmp(b)
			require.NoError(t, err)
			require.Equal(t, 1, cmp)

			// s.Add(s) borrows the same handle twice
			double, err := a.Add(a)
			require.NoError(t, err)
			require.Equal(t, "14", double.String())
		})
	}
}

func TestScalarEncoding(t *testing.T) {
	for _, c := range All() {
		t.Run(c.String(), func(t *testing.T) {
			r, err := RandomScalar(c)
			require.NoError(t, err)
			b, err := r.Bytes()
			require.NoError(t, err)
			require.Len(t, b, c.ByteLen())

			back, err := NewScalarFromBytes(c, b)
			require.NoError(t, err)
			eq, err := back.Equal(r)
			require.NoError(t, err)
			require.True(t, eq)

			_, err = NewScalarFromBytes(c, c.Modulus().FillBytes(make([]byte, c.ByteLen())))
			require.Error(t, err)

			fromStr, err := NewScalarFromString(c, r.String())
			require.NoError(t, err)
			eq, err = fromStr.Equal(r)
			require.NoError(t, err)
			require.True(t, eq)
		})
	}
}

func TestScalarFromString(t *testing.T) {
	s, err := NewScalarFromString(BN254, "0x10")
	require.NoError(t, err)
	require.Equal(t, "16", s.String())

	m, err := NewScalarFromString(BN254, "-1")
	require.NoError(t, err)
	v, err := m.BigInt()
	require.NoError(t, err)
	require.Zero(t, v.Cmp(new(big.Int).Sub(BN254.Modulus(), big.NewInt(1))))

	_, err = NewScalarFromString(BN254, "")
	require.Error(t, err)
	_, err = NewScalarFromString(BN254, "twelve")
	require.Error(t, err)
	_, err = NewScalarFromString(Unknown, "1")
	require.ErrorIs(t, err, plonk.ErrUnsupportedConfiguration)
}

func TestScalarMixedConfigurations(t *testing.T) {
	a := mustScalar(t, BN254, 1)
	b := mustScalar(t, BLS12_381, 1)

	_, err := a.Add(b)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)
	_, err = a.Equal(b)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)

	var pe *plonk.Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "Scalar.Equal", pe.Op)
}

func TestScalarFree(t *testing.T) {
	s := mustScalar(t, BN254, 9)
	h := s.owned.Handle()
	require.True(t, registry.Default().Live(h))

	s.Free()
	s.Free()
	require.False(t, registry.Default().Live(h))

	_, err := s.Bytes()
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
	_, err = s.Add(mustScalar(t, BN254, 1))
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
	require.Equal(t, "<freed>", s.String())

	var nilScalar *Scalar
	nilScalar.Free()
	_, err = nilScalar.Bytes()
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
}

func TestScalarConcurrentUseAndFree(t *testing.T) {
	s := mustScalar(t, BN254, 3)
	var wg sync.WaitGroup
	failures := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v, err := s.BigInt()
				if err != nil {
					if !errors.Is(err, plonk.ErrInvalidHandle) {
						failures <- err
					}
					return
				}
				if v.Cmp(big.NewInt(3)) != 0 {
					failures <- fmt.Errorf("read %s", v)
					return
				}
			}
		}()
	}
	s.Free()
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Error(err)
	}
}
