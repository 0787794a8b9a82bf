package backend

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
)

// Challenges are the verifier challenges of a PLONK proof, in derivation
// order.
type Challenges struct {
	Gamma Elem
	Beta  Elem
	Alpha Elem
	Zeta  Elem
}

// Replay recomputes the verifier challenges. The binding order follows the
// gnark verifier: the verifying key commitments and the public inputs, then
// L, R and O for gamma; nothing new for beta; the BSB22 commitments and Z for
// alpha; the quotient commitments for zeta.
func Replay(b Backend, vk *VerifyingKeyView, pf *ProofView, public []Elem) (*Challenges, error) {
	fs := fiatshamir.NewTranscript(sha256.New(), "gamma", "beta", "alpha", "zeta")

	bind := func(id string, ps ...Point) error {
		for _, p := range ps {
			if err := fs.Bind(id, p.Raw()); err != nil {
				return fmt.Errorf("backend: bind %s: %w", id, err)
			}
		}
		return nil
	}
	derive := func(id string) (Elem, error) {
		raw, err := fs.ComputeChallenge(id)
		if err != nil {
			return nil, fmt.Errorf("backend: challenge %s: %w", id, err)
		}
		return b.ElemFromBigInt(new(big.Int).SetBytes(raw)), nil
	}

	if err := bind("gamma", vk.S[0], vk.S[1], vk.S[2], vk.Ql, vk.Qr, vk.Qm, vk.Qo, vk.Qk); err != nil {
		return nil, err
	}
	if err := bind("gamma", vk.Qcp...); err != nil {
		return nil, err
	}
	for _, e := range public {
		if err := fs.Bind("gamma", e.Bytes()); err != nil {
			return nil, fmt.Errorf("backend: bind public input: %w", err)
		}
	}
	if err := bind("gamma", pf.LRO[0], pf.LRO[1], pf.LRO[2]); err != nil {
		return nil, err
	}

	var (
		c   Challenges
		err error
	)
	if c.Gamma, err = derive("gamma"); err != nil {
		return nil, err
	}
	if c.Beta, err = derive("beta"); err != nil {
		return nil, err
	}
	if err = bind("alpha", pf.Bsb22...); err != nil {
		return nil, err
	}
	if err = bind("alpha", pf.Z); err != nil {
		return nil, err
	}
	if c.Alpha, err = derive("alpha"); err != nil {
		return nil, err
	}
	if err = bind("zeta", pf.H[0], pf.H[1], pf.H[2]); err != nil {
		return nil, err
	}
	if c.Zeta, err = derive("zeta"); err != nil {
		return nil, err
	}
	return &c, nil
}
