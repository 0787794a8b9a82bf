package proof

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"time"

	gnarkplonk "github.com/consensys/gnark/backend/plonk"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/codec"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/index"
	"github.com/marlinplonk/plonk-go/pkg/plonk/logging"
	"github.com/marlinplonk/plonk-go/pkg/plonk/vector"
)

const sectionProof uint32 = 1

type payload struct {
	proof     gnarkplonk.Proof
	view      *backend.ProofView
	pointSize int64
}

func (p *payload) SizeBytes() int64 {
	return int64(11+len(p.view.Bsb22)) * p.pointSize
}

// Proof is a handle to a PLONK proof.
type Proof struct {
	owned registry.Owned
	curve curve.Curve
}

func wrap(c curve.Curve, pf gnarkplonk.Proof) (*Proof, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, err
	}
	view, err := b.ProofView(pf)
	if err != nil {
		return nil, err
	}
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindProof, c.Tag(), &payload{proof: pf, view: view, pointSize: backend.PointSize(c.ID())})
	if err != nil {
		return nil, err
	}
	p := &Proof{curve: c}
	p.owned.Init(reg, h)
	runtime.SetFinalizer(p, (*Proof).Free)
	return p, nil
}

func split(elems []backend.Elem, nbPublic int) (public, secret []*big.Int) {
	public = make([]*big.Int, nbPublic)
	secret = make([]*big.Int, len(elems)-nbPublic)
	for i, e := range elems {
		if i < nbPublic {
			public[i] = e.BigInt()
		} else {
			secret[i-nbPublic] = e.BigInt()
		}
	}
	return public, secret
}

// Prove produces a proof that witness satisfies the system behind pi. The
// witness lists public inputs first, then secret inputs; it is frozen by
// the call. The context is only consulted before proving starts.
func Prove(ctx context.Context, pi *index.ProvingIndex, witness *vector.Vector) (*Proof, error) {
	const op = "proof.Prove"
	if err := ctx.Err(); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	c := pi.Curve()
	if err := curve.Check(c, witness.Curve()); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	art, err := pi.Artifacts()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	sys := art.System
	n, err := witness.Len()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if want := sys.NbPublic + sys.NbSecret; n != want {
		return nil, plonk.Errorf(op, "%w: witness has %d values, system expects %d",
			plonk.ErrUnsatisfiedWitness, n, want)
	}
	elems, err := witness.Consume()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	public, secret := split(elems, sys.NbPublic)
	full, err := sys.Witness(c.ID(), public, secret, false)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}

	start := time.Now()
	pf, err := backend.Prove(art.CCS, art.ProvingKey, full)
	runtime.KeepAlive(pi)
	if err != nil {
		plonk.Logger().Debug(ctx, "proof rejected by prover", logging.Curve(c), logging.Redacted("witness"))
		return nil, plonk.Wrap(op, err)
	}
	p, err := wrap(c, pf)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	plonk.Logger().Info(ctx, "proof generated",
		logging.Curve(c), logging.Handle(p.owned.Handle().ID()), "duration", time.Since(start))
	return p, nil
}

// Curve returns the configuration of p.
func (p *Proof) Curve() curve.Curve {
	if p == nil {
		return curve.Unknown
	}
	return p.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (p *Proof) Free() {
	if p == nil {
		return
	}
	p.owned.Free()
	runtime.SetFinalizer(p, nil)
}

func (p *Proof) payload(op string) (*payload, error) {
	if p == nil {
		return nil, plonk.Errorf(op, "%w: nil proof", plonk.ErrInvalidHandle)
	}
	var out *payload
	err := registry.With(&p.owned, registry.KindProof, func(v *payload) error {
		out = v
		return nil
	})
	runtime.KeepAlive(p)
	return out, plonk.Wrap(op, err)
}

// Backend returns the collaborator proof and its decoded view. Both are
// shared and must not be modified.
// This is exported for use by the object subpackages.
func (p *Proof) Backend() (gnarkplonk.Proof, *backend.ProofView, error) {
	v, err := p.payload("Proof.Backend")
	if err != nil {
		return nil, nil, err
	}
	return v.proof, v.view, nil
}

// Evaluations returns the claimed polynomial evaluations at the challenge
// point zeta, followed by the evaluation of the permutation polynomial at
// the shifted point.
func (p *Proof) Evaluations() (*vector.Vector, error) {
	const op = "Proof.Evaluations"
	v, err := p.payload(op)
	if err != nil {
		return nil, err
	}
	out, err := vector.NewFromBackend(p.curve, append([]backend.Elem(nil), v.view.Claimed...))
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if err := out.Freeze(); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	return out, nil
}

// Commitments returns the wire commitments L, R, O, the permutation
// commitment Z, the quotient commitments H1 to H3 and any BSB22
// commitments, in that order.
func (p *Proof) Commitments() ([]*curve.Point, error) {
	const op = "Proof.Commitments"
	v, err := p.payload(op)
	if err != nil {
		return nil, err
	}
	view := v.view
	pts := []backend.Point{view.LRO[0], view.LRO[1], view.LRO[2], view.Z, view.H[0], view.H[1], view.H[2]}
	pts = append(pts, view.Bsb22...)
	out := make([]*curve.Point, len(pts))
	for i, pt := range pts {
		if out[i], err = curve.NewPointFromBackend(p.curve, pt); err != nil {
			return nil, plonk.Wrap(op, err)
		}
	}
	return out, nil
}

// Encode serializes p.
func (p *Proof) Encode() ([]byte, error) {
	const op = "Proof.Encode"
	v, err := p.payload(op)
	if err != nil {
		return nil, err
	}
	sec, err := codec.Capture(sectionProof, v.proof)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	return codec.Encode(codec.Frame{
		Curve:    p.curve.Tag(),
		Kind:     uint32(registry.KindProof),
		Sections: []codec.Section{sec},
	}), nil
}

// Decode parses a proof encoded for configuration c.
func Decode(c curve.Curve, data []byte) (*Proof, error) {
	const op = "proof.Decode"
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	f, err := codec.Decode(data, c.Tag(), uint32(registry.KindProof))
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	pf := backend.NewProof(c.ID())
	shape := func(raw []byte) error { return b.Scan(backend.ShapeProof, raw) }
	if err := f.RestoreSection(sectionProof, shape, pf); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	p, err := wrap(c, pf)
	if err != nil {
		return nil, plonk.Errorf(op, "%w: %v", plonk.ErrMalformedEncoding, err)
	}
	return p, nil
}

// WriteFile stores the encoding of p at path.
func (p *Proof) WriteFile(path string) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return plonk.Wrap("Proof.WriteFile", os.WriteFile(path, data, 0o600))
}

// ReadFile loads a proof for configuration c from path.
func ReadFile(c curve.Curve, path string) (*Proof, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller chooses the artifact path
	if err != nil {
		return nil, plonk.Wrap("proof.ReadFile", err)
	}
	return Decode(c, data)
}

func (p *Proof) String() string {
	if p == nil {
		return "<nil proof>"
	}
	return fmt.Sprintf("proof(%s)", p.curve)
}
