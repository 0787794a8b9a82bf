package curve

import (
	"testing"

	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/stretchr/testify/require"
)

func TestTagsAreStable(t *testing.T) {
	want := map[Curve]uint32{BN254: 1, BLS12_381: 2, BLS12_377: 3, BW6_761: 4, BLS24_315: 5, BW6_633: 6}
	for c, tag := range want {
		require.Equal(t, tag, c.Tag(), c.String())
		back, err := FromTag(tag)
		require.NoError(t, err)
		require.Equal(t, c, back)
	}
	_, err := FromTag(0)
	require.ErrorIs(t, err, plonk.ErrUnsupportedConfiguration)
	_, err = FromTag(99)
	require.ErrorIs(t, err, plonk.ErrUnsupportedConfiguration)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Curve
	}{
		{"BN254", BN254},
		{"bn254", BN254},
		{"bls12-381", BLS12_381},
		{" BW6_761 ", BW6_761},
		{"bls24_315", BLS24_315},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, c)
		})
	}
	_, err := Parse("secp256k1")
	require.ErrorIs(t, err, plonk.ErrUnsupportedConfiguration)
}

func TestConjugatePairs(t *testing.T) {
	for _, c := range []Curve{BLS12_377, BW6_761, BLS24_315, BW6_633} {
		other, ok := c.Conjugate()
		require.True(t, ok)
		back, ok := other.Conjugate()
		require.True(t, ok)
		require.Equal(t, c, back)
	}

	// the outer curve's scalar field is the inner curve's base field
	require.Zero(t, BW6_761.ID().ScalarField().Cmp(BLS12_377.ID().BaseField()))
	require.Zero(t, BW6_633.ID().ScalarField().Cmp(BLS24_315.ID().BaseField()))

	_, ok := BN254.Conjugate()
	require.False(t, ok)
}

func TestCurveProperties(t *testing.T) {
	for _, c := range All() {
		t.Run(c.String(), func(t *testing.T) {
			require.True(t, c.Supported())
			require.NotNil(t, c.Modulus())
			require.Equal(t, (c.Modulus().BitLen()+7)/8, c.ByteLen())
			_, err := c.Backend()
			require.NoError(t, err)
		})
	}
	require.False(t, Unknown.Supported())
	require.Nil(t, Unknown.Modulus())
	require.Zero(t, Unknown.ByteLen())
	require.Equal(t, "Unknown", Curve(42).String())
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check(BN254, BN254, BN254))
	require.ErrorIs(t, Check(BN254, BN254, BLS12_381), plonk.ErrConfigurationMismatch)
}
