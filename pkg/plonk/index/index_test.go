package index

import (
	"bytes"
	"context"
	"encoding/binary"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/marlinplonk/plonk-go/internal/codec"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/urs"
	"github.com/stretchr/testify/require"
)

// fourGates checks x·y = z, z + x = w, w = 15 and y² = 16 with x public.
const fourGates = `{
  "public": 1,
  "secret": 3,
  "gates": [
    {"wires": [0, 1, 2], "coeffs": [null, null, -1], "mul": 1},
    {"wires": [2, 0, 3], "coeffs": [1, 1, -1]},
    {"wires": [3, 3, 3], "coeffs": [1, null, null], "const": -15},
    {"wires": [1, 1, 1], "coeffs": [null, null, null], "mul": 1, "const": -16}
  ]
}`

func mustSystem(t *testing.T) ConstraintSystem {
	t.Helper()
	cs, err := ParseConstraintSystem([]byte(fourGates))
	require.NoError(t, err)
	return cs
}

func mustURS(t *testing.T, c curve.Curve, size int) *urs.URS {
	t.Helper()
	u, err := urs.Deterministic(context.Background(), c, size, []byte("index-test"))
	require.NoError(t, err)
	return u
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestParseConstraintSystem(t *testing.T) {
	cs := mustSystem(t)
	require.Equal(t, 1, cs.NumPublic)
	require.Equal(t, 3, cs.NumSecret)
	require.Equal(t, 4, cs.NumInputs())
	require.Len(t, cs.Gates, 4)
	require.Nil(t, cs.Gates[0].Coeffs[0])
	require.Equal(t, big.NewInt(-15), cs.Gates[2].Const)

	for name, doc := range map[string]string{
		"syntax":     `{"public": 1,`,
		"arity":      `{"public": 1, "secret": 1, "gates": [{"wires": [0, 1], "coeffs": [1, 1]}]}`,
		"coeffs":     `{"public": 1, "secret": 1, "gates": [{"wires": [0, 1, 1], "coeffs": [1]}]}`,
		"wire range": `{"public": 1, "secret": 1, "gates": [{"wires": [0, 1, 2], "coeffs": [1, 1, 1]}]}`,
		"no gates":   `{"public": 1, "secret": 1, "gates": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConstraintSystem([]byte(doc))
			require.ErrorIs(t, err, plonk.ErrInvalidConstraintSystem)
		})
	}
}

func TestConstraintSystemCBOR(t *testing.T) {
	cs := mustSystem(t)
	data, err := cs.MarshalCBOR()
	require.NoError(t, err)
	again, err := cs.MarshalCBOR()
	require.NoError(t, err)
	require.Equal(t, data, again)

	var back ConstraintSystem
	require.NoError(t, back.UnmarshalCBOR(data))
	require.Equal(t, cs.NumPublic, back.NumPublic)
	require.Len(t, back.Gates, 4)
	require.Nil(t, back.Gates[0].Coeffs[0])
	require.Zero(t, back.Gates[2].Const.Cmp(big.NewInt(-15)))

	require.ErrorIs(t, back.UnmarshalCBOR(data[:len(data)-1]), plonk.ErrMalformedEncoding)
}

func TestBuild(t *testing.T) {
	for _, c := range []curve.Curve{curve.BN254, curve.BLS12_381, curve.BLS24_315} {
		t.Run(c.String(), func(t *testing.T) {
			pi, err := Build(context.Background(), mustURS(t, c, 16), mustSystem(t))
			require.NoError(t, err)
			require.Equal(t, c, pi.Curve())

			domain, err := pi.DomainSize()
			require.NoError(t, err)
			require.Equal(t, 8, domain)
			n, err := pi.NumPublicInputs()
			require.NoError(t, err)
			require.Equal(t, 1, n)
			g, err := pi.NumGates()
			require.NoError(t, err)
			require.Equal(t, 4, g)

			vi, err := pi.VerifyingIndex()
			require.NoError(t, err)
			pi.Free()
			_, err = pi.DomainSize()
			require.ErrorIs(t, err, plonk.ErrInvalidHandle)

			info, err := vi.Info()
			require.NoError(t, err)
			require.Equal(t, Info{Curve: c, DomainSize: 8, NumPublic: 1, NumSecret: 3, NumGates: 4, NumConstraints: info.NumConstraints}, info)
			require.Positive(t, info.NumConstraints)
		})
	}
}

func TestBuildRejects(t *testing.T) {
	ctx := context.Background()

	// domain 8 needs 11 points
	_, err := Build(ctx, mustURS(t, curve.BN254, 10), mustSystem(t))
	require.ErrorIs(t, err, plonk.ErrURSTooSmall)

	bad := mustSystem(t)
	bad.Gates[0].Wires = []int{0, 1, 7}
	_, err = Build(ctx, mustURS(t, curve.BN254, 16), bad)
	require.ErrorIs(t, err, plonk.ErrInvalidConstraintSystem)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Build(cancelled, mustURS(t, curve.BN254, 16), mustSystem(t))
	require.ErrorIs(t, err, context.Canceled)

	u := mustURS(t, curve.BN254, 16)
	u.Free()
	_, err = Build(ctx, u, mustSystem(t))
	require.ErrorIs(t, err, plonk.ErrInvalidHandle)
}

func TestBuildDoesNotRetainURS(t *testing.T) {
	u := mustURS(t, curve.BN254, 16)
	pi, err := Build(context.Background(), u, mustSystem(t))
	require.NoError(t, err)
	u.Free()
	_, err = pi.Encode()
	require.NoError(t, err)
}

func TestProvingIndexEncoding(t *testing.T) {
	c := curve.BLS12_377
	pi, err := Build(context.Background(), mustURS(t, c, 16), mustSystem(t))
	require.NoError(t, err)
	data, err := pi.Encode()
	require.NoError(t, err)

	back, err := DecodeProvingIndex(c, data)
	require.NoError(t, err)
	want, err := pi.Info()
	require.NoError(t, err)
	got, err := back.Info()
	require.NoError(t, err)
	require.Equal(t, want, got)

	desc, err := back.ConstraintSystem()
	require.NoError(t, err)
	require.Len(t, desc.Gates, 4)

	_, err = DecodeProvingIndex(curve.BW6_761, data)
	require.ErrorIs(t, err, plonk.ErrConfigurationMismatch)
	_, err = DecodeVerifyingIndex(c, data)
	require.ErrorIs(t, err, plonk.ErrMalformedEncoding)
	_, err = DecodeProvingIndex(c, data[:len(data)-40])
	require.ErrorIs(t, err, plonk.ErrMalformedEncoding)
}

func TestVerifyingIndexEncoding(t *testing.T) {
	c := curve.BN254
	pi, err := Build(context.Background(), mustURS(t, c, 16), mustSystem(t))
	require.NoError(t, err)
	vi, err := pi.VerifyingIndex()
	require.NoError(t, err)

	data, err := vi.Encode()
	require.NoError(t, err)
	back, err := DecodeVerifyingIndex(c, data)
	require.NoError(t, err)
	again, err := back.Encode()
	require.NoError(t, err)
	require.Equal(t, data, again)

	n, err := back.NumPublicInputs()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	data[len(data)/2] ^= 0x01
	_, err = DecodeVerifyingIndex(c, data)
	require.ErrorIs(t, err, plonk.ErrMalformedEncoding)
}

func TestIndexFiles(t *testing.T) {
	chdir(t, t.TempDir())
	c := curve.BN254
	pi, err := Build(context.Background(), mustURS(t, c, 16), mustSystem(t))
	require.NoError(t, err)
	require.NoError(t, pi.WriteFile("pi.bin"))
	vi, err := pi.VerifyingIndex()
	require.NoError(t, err)
	require.NoError(t, vi.WriteFile("vi.bin"))

	_, err = ReadProvingIndex(c, "pi.bin")
	require.NoError(t, err)
	_, err = ReadVerifyingIndex(c, "vi.bin")
	require.NoError(t, err)
	_, err = ReadVerifyingIndex(c, "pi.bin")
	require.ErrorIs(t, err, plonk.ErrMalformedEncoding)

	elsewhere := filepath.Join(t.TempDir(), "vi.bin")
	require.NoError(t, vi.WriteFile(elsewhere))
	_, err = ReadVerifyingIndex(c, elsewhere)
	require.NoError(t, err)
}

// section returns a copy of the section tagged tag of an encoded artifact.
func section(t *testing.T, data []byte, c curve.Curve, kind registry.Kind, tag uint32) []byte {
	t.Helper()
	f, err := codec.Decode(data, c.Tag(), uint32(kind))
	require.NoError(t, err)
	raw, err := f.Section(tag)
	require.NoError(t, err)
	return bytes.Clone(raw)
}

func inflated(data []byte, off int) []byte {
	out := bytes.Clone(data)
	binary.BigEndian.PutUint32(out[off:], 0xFFFFFFFF)
	return out
}

func TestDecodeRejectsInflatedLengths(t *testing.T) {
	c := curve.BN254
	pi, err := Build(context.Background(), mustURS(t, c, 16), mustSystem(t))
	require.NoError(t, err)
	vi, err := pi.VerifyingIndex()
	require.NoError(t, err)
	piData, err := pi.Encode()
	require.NoError(t, err)
	viData, err := vi.Encode()
	require.NoError(t, err)

	desc := section(t, piData, c, registry.KindProvingIndex, sectionDescription)
	pk := section(t, piData, c, registry.KindProvingIndex, sectionProvingKey)
	vk := section(t, piData, c, registry.KindProvingIndex, sectionVerifyKey)
	info := section(t, viData, c, registry.KindVerifyingIndex, sectionInfo)

	// Size, SizeInv, Generator, NbPublicVariables, CosetShift and eight
	// selector commitments precede the Qcp length
	qcp := 8 + 2*fr.Bytes + 8 + fr.Bytes + 8*bn254.SizeOfG1AffineCompressed

	proving := func(pk, vk []byte) []byte {
		return codec.Encode(codec.Frame{
			Curve: c.Tag(),
			Kind:  uint32(registry.KindProvingIndex),
			Sections: []codec.Section{
				{Tag: sectionDescription, Data: desc},
				{Tag: sectionProvingKey, Data: pk},
				{Tag: sectionVerifyKey, Data: vk},
			},
		})
	}
	verifying := func(vk []byte) []byte {
		return codec.Encode(codec.Frame{
			Curve:    c.Tag(),
			Kind:     uint32(registry.KindVerifyingIndex),
			Sections: []codec.Section{{Tag: sectionInfo, Data: info}, {Tag: sectionVerifyKey, Data: vk}},
		})
	}

	_, err = DecodeProvingIndex(c, proving(pk, vk))
	require.NoError(t, err)
	_, err = DecodeVerifyingIndex(c, verifying(vk))
	require.NoError(t, err)

	for name, data := range map[string][]byte{
		"proving key qcp":    proving(inflated(pk, qcp), vk),
		"canonical srs":      proving(inflated(pk, len(vk)), vk),
		"trailing bytes":     proving(append(bytes.Clone(pk), 0xFF), vk),
		"verifying key qcp":  proving(pk, inflated(vk, qcp)),
		"commitment indexes": proving(pk, inflated(vk, len(vk)-4)),
		"bare proving key":   proving([]byte{0xFF, 0xFF, 0xFF, 0xFF}, vk),
		"bare verifying key": proving(pk, []byte{0xFF, 0xFF, 0xFF, 0xFF}),
	} {
		_, err := DecodeProvingIndex(c, data)
		require.ErrorIs(t, err, plonk.ErrMalformedEncoding, name)
	}
	for name, data := range map[string][]byte{
		"qcp":                verifying(inflated(vk, qcp)),
		"commitment indexes": verifying(inflated(vk, len(vk)-4)),
		"bare":               verifying([]byte{0xFF, 0xFF, 0xFF, 0xFF}),
	} {
		_, err := DecodeVerifyingIndex(c, data)
		require.ErrorIs(t, err, plonk.ErrMalformedEncoding, name)
	}
}

func TestDecodeRecompilesConstraintSystem(t *testing.T) {
	c := curve.BLS12_381
	pi, err := Build(context.Background(), mustURS(t, c, 16), mustSystem(t))
	require.NoError(t, err)
	data, err := pi.Encode()
	require.NoError(t, err)
	back, err := DecodeProvingIndex(c, data)
	require.NoError(t, err)

	want, err := pi.Artifacts()
	require.NoError(t, err)
	got, err := back.Artifacts()
	require.NoError(t, err)
	require.Equal(t, want.CCS.GetNbConstraints(), got.CCS.GetNbConstraints())
	require.Equal(t, want.CCS.GetNbPublicVariables(), got.CCS.GetNbPublicVariables())
	require.Equal(t, want.CCS.GetNbSecretVariables(), got.CCS.GetNbSecretVariables())

	again, err := back.Encode()
	require.NoError(t, err)
	require.Equal(t, data, again)
}
