package backend

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/kzg"
	gnarkplonk "github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
)

// Keys is the output of a PLONK setup.
type Keys struct {
	ProvingKey   gnarkplonk.ProvingKey
	VerifyingKey gnarkplonk.VerifyingKey
	Domain       int
}

// SystemDomain returns the evaluation domain size of ccs.
func SystemDomain(ccs constraint.ConstraintSystem) int {
	return DomainSize(ccs.GetNbConstraints(), ccs.GetNbPublicVariables())
}

// Setup derives PLONK keys for ccs from srs. The canonical SRS is truncated to
// what the domain needs before it is embedded in the proving key.
func Setup(b Backend, ccs constraint.ConstraintSystem, srs kzg.SRS) (*Keys, error) {
	domain := SystemDomain(ccs)
	need := RequiredURSSize(domain)
	if have := b.SRSSize(srs); have < need {
		return nil, fmt.Errorf("%w: domain %d needs %d points, urs has %d", ErrURSTooSmall, domain, need, have)
	}
	canonical, err := b.TruncateSRS(srs, need)
	if err != nil {
		return nil, err
	}
	lagrange, err := b.LagrangeSRS(srs, domain)
	if err != nil {
		return nil, err
	}
	pk, vk, err := gnarkplonk.Setup(ccs, canonical, lagrange)
	if err != nil {
		return nil, fmt.Errorf("backend: plonk setup: %w", err)
	}
	return &Keys{ProvingKey: pk, VerifyingKey: vk, Domain: domain}, nil
}

// Prove checks that full satisfies ccs and produces a proof.
func Prove(ccs constraint.ConstraintSystem, pk gnarkplonk.ProvingKey, full witness.Witness) (gnarkplonk.Proof, error) {
	if err := ccs.IsSolved(full); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsatisfiedWitness, err)
	}
	proof, err := gnarkplonk.Prove(ccs, pk, full)
	if err != nil {
		return nil, fmt.Errorf("backend: plonk prove: %w", err)
	}
	return proof, nil
}

// Verify runs the PLONK verifier. Any rejection is reported as
// ErrVerificationFailed.
func Verify(proof gnarkplonk.Proof, vk gnarkplonk.VerifyingKey, public witness.Witness) error {
	if err := gnarkplonk.Verify(proof, vk, public); err != nil {
		if errors.Is(err, ErrVerificationFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	return nil
}

// NewProvingKey returns an empty proving key for decoding.
func NewProvingKey(id ecc.ID) gnarkplonk.ProvingKey { return gnarkplonk.NewProvingKey(id) }

// NewVerifyingKey returns an empty verifying key for decoding.
func NewVerifyingKey(id ecc.ID) gnarkplonk.VerifyingKey { return gnarkplonk.NewVerifyingKey(id) }

// NewProof returns an empty proof for decoding.
func NewProof(id ecc.ID) gnarkplonk.Proof { return gnarkplonk.NewProof(id) }
