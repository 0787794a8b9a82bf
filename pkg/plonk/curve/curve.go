package curve

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
)

// Curve identifies a scalar field together with its pairing-friendly curve.
// The numeric value is the stable tag written into encoded artifacts.
type Curve uint32

// Supported curve configurations.
const (
	Unknown Curve = iota
	BN254
	BLS12_381
	BLS12_377
	BW6_761
	BLS24_315
	BW6_633
)

var ids = map[Curve]ecc.ID{
	BN254:     ecc.BN254,
	BLS12_381: ecc.BLS12_381,
	BLS12_377: ecc.BLS12_377,
	BW6_761:   ecc.BW6_761,
	BLS24_315: ecc.BLS24_315,
	BW6_633:   ecc.BW6_633,
}

// All returns every supported configuration in tag order.
func All() []Curve {
	return []Curve{BN254, BLS12_381, BLS12_377, BW6_761, BLS24_315, BW6_633}
}

// Tag returns the stable identifier used by the codec.
func (c Curve) Tag() uint32 {
	return uint32(c)
}

// ID returns the gnark-crypto identifier of c.
func (c Curve) ID() ecc.ID {
	if id, ok := ids[c]; ok {
		return id
	}
	return ecc.UNKNOWN
}

// Supported reports whether c names a configuration with a backend.
func (c Curve) Supported() bool {
	_, ok := ids[c]
	return ok
}

// String returns a human-readable name for the curve.
func (c Curve) String() string {
	switch c {
	case BN254:
		return "BN254"
	case BLS12_381:
		return "BLS12_381"
	case BLS12_377:
		return "BLS12_377"
	case BW6_761:
		return "BW6_761"
	case BLS24_315:
		return "BLS24_315"
	case BW6_633:
		return "BW6_633"
	default:
		return "Unknown"
	}
}

// Conjugate returns the other member of a two-chain: the curve whose base
// field is the scalar field of c, or the reverse.
func (c Curve) Conjugate() (Curve, bool) {
	switch c {
	case BLS12_377:
		return BW6_761, true
	case BW6_761:
		return BLS12_377, true
	case BLS24_315:
		return BW6_633, true
	case BW6_633:
		return BLS24_315, true
	default:
		return Unknown, false
	}
}

// Modulus returns a copy of the scalar field modulus, or nil for an
// unsupported curve.
func (c Curve) Modulus() *big.Int {
	if !c.Supported() {
		return nil
	}
	return c.ID().ScalarField()
}

// ByteLen returns the size of a canonical scalar encoding.
func (c Curve) ByteLen() int {
	b, err := c.Backend()
	if err != nil {
		return 0
	}
	return b.ElemLen()
}

// Backend returns the collaborator adapter for c.
// This is exported for use by the object subpackages.
func (c Curve) Backend() (backend.Backend, error) {
	if !c.Supported() {
		return nil, fmt.Errorf("%w: tag %d", plonk.ErrUnsupportedConfiguration, uint32(c))
	}
	return backend.For(c.ID())
}

// Parse accepts a curve name such as "BN254", "bls12-381" or "bw6_761".
func Parse(name string) (Curve, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, c := range All() {
		if c.String() == norm {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", plonk.ErrUnsupportedConfiguration, name)
}

// FromTag returns the configuration with the given codec tag.
func FromTag(tag uint32) (Curve, error) {
	c := Curve(tag)
	if !c.Supported() {
		return Unknown, fmt.Errorf("%w: tag %d", plonk.ErrUnsupportedConfiguration, tag)
	}
	return c, nil
}

// Check returns ErrConfigurationMismatch unless every curve equals want.
func Check(want Curve, got ...Curve) error {
	for _, g := range got {
		if g != want {
			return fmt.Errorf("%w: %s and %s", plonk.ErrConfigurationMismatch, want, g)
		}
	}
	return nil
}
