package backend

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"golang.org/x/crypto/sha3"
)

// MinURSSize is the smallest SRS the KZG setup accepts.
const MinURSSize = 2

// canonicalPadding is the number of extra canonical SRS points PLONK needs
// above the domain size to open the blinded polynomials.
const canonicalPadding = 3

const alphaDomain = "plonk-go/urs/v1"

// RandomAlpha samples a fresh toxic-waste scalar for a setup over id.
func RandomAlpha(id ecc.ID) (*big.Int, error) {
	mod := id.ScalarField()
	for {
		a, err := rand.Int(rand.Reader, mod)
		if err != nil {
			return nil, fmt.Errorf("backend: sample alpha: %w", err)
		}
		if a.Sign() != 0 {
			return a, nil
		}
	}
}

// DeriveAlpha expands seed into a setup scalar with SHAKE-256. The output is
// fixed for a given seed and curve, so test fixtures can share an SRS
// without storing it. Such an SRS offers no soundness.
func DeriveAlpha(id ecc.ID, seed []byte) *big.Int {
	h := sha3.NewShake256()
	_, _ = h.Write([]byte(alphaDomain))
	var tag [8]byte
	binary.BigEndian.PutUint64(tag[:], uint64(id))
	_, _ = h.Write(tag[:])
	_, _ = h.Write(seed)

	mod := id.ScalarField()
	out := make([]byte, (mod.BitLen()+7)/8+16)
	for {
		_, _ = h.Read(out)
		a := new(big.Int).SetBytes(out)
		a.Mod(a, mod)
		if a.Sign() != 0 {
			return a
		}
	}
}

// DomainSize returns the PLONK evaluation domain for a system with the given
// constraint and public input counts.
func DomainSize(nbConstraints, nbPublic int) int {
	return int(ecc.NextPowerOfTwo(uint64(nbConstraints + nbPublic)))
}

// RequiredURSSize returns the canonical SRS length PLONK setup needs for a
// domain of the given size.
func RequiredURSSize(domain int) int {
	return domain + canonicalPadding
}

// PointSize estimates the in-memory footprint of one G1 affine point.
func PointSize(id ecc.ID) int64 {
	return int64(2 * ((id.BaseField().BitLen() + 63) / 64) * 8)
}
