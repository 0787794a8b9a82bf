package oracle

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"runtime"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/logging"
	"github.com/marlinplonk/plonk-go/pkg/plonk/index"
	"github.com/marlinplonk/plonk-go/pkg/plonk/proof"
	"github.com/marlinplonk/plonk-go/pkg/plonk/vector"
)

const digestDomain = "plonk-go/public-inputs/v1"

type payload struct {
	ch       backend.Challenges
	digest   [32]byte
	evals    []backend.Elem
	accepted bool
	reason   error
}

// Challenges are the four round challenges of the PLONK transcript, in
// derivation order. The challenge the KZG batch opening derives to fold its
// claims is internal to the pairing check and is not part of this set.
type Challenges struct {
	Gamma *curve.Scalar
	Beta  *curve.Scalar
	Alpha *curve.Scalar
	Zeta  *curve.Scalar
}

// Result is a handle to the outcome of replaying the verifier.
type Result struct {
	owned registry.Owned
	curve curve.Curve
}

// Item is one input of ComputeBatch.
type Item struct {
	Index  *index.VerifyingIndex
	Proof  *proof.Proof
	Public *vector.Vector
}

// PublicDigest hashes the canonical encodings of public inputs of
// configuration c.
func PublicDigest(c curve.Curve, public []backend.Elem) [32]byte {
	h := blake3.New()
	_, _ = h.Write([]byte(digestDomain))
	_, _ = h.Write(binary.BigEndian.AppendUint32(nil, c.Tag()))
	for _, e := range public {
		_, _ = h.Write(e.Bytes())
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Compute replays the verifier for pf against vi and public.
func Compute(vi *index.VerifyingIndex, pf *proof.Proof, public *vector.Vector) (*Result, error) {
	const op = "oracle.Compute"
	c := vi.Curve()
	if err := curve.Check(c, pf.Curve(), public.Curve()); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	vk, err := vi.VerifyingKey()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	nbPublic, err := vi.NumPublicInputs()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	gp, view, err := pf.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	inputs, err := public.Elems()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if len(inputs) != nbPublic {
		return nil, plonk.Errorf(op, "%w: %d public inputs, index expects %d", plonk.ErrIndexOutOfRange, len(inputs), nbPublic)
	}

	vkView, err := b.VerifyingKeyView(vk)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	ch, err := backend.Replay(b, vkView, view, inputs)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}

	values := make([]*big.Int, len(inputs))
	for i, e := range inputs {
		values[i] = e.BigInt()
	}
	w, err := backend.System{NbPublic: nbPublic}.Witness(c.ID(), values, nil, true)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	reason := backend.Verify(gp, vk, w)
	runtime.KeepAlive(vi)
	runtime.KeepAlive(pf)

	p := &payload{
		ch:       *ch,
		digest:   PublicDigest(c, inputs),
		evals:    append([]backend.Elem(nil), view.Claimed...),
		accepted: reason == nil,
		reason:   reason,
	}
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindOracleResult, c.Tag(), p)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	r := &Result{curve: c}
	r.owned.Init(reg, h)
	runtime.SetFinalizer(r, (*Result).Free)

	plonk.Logger().Debug(context.Background(), "oracles computed",
		logging.Curve(c), logging.Kind(registry.KindOracleResult), logging.Handle(h.ID()), "accepted", p.accepted)
	return r, nil
}

// ComputeBatch runs Compute over items with at most limit computations in
// flight; a limit below one means no bound. It returns the first structural
// error. Rejected proofs are reported in their results, not as errors.
func ComputeBatch(ctx context.Context, items []Item, limit int) ([]*Result, error) {
	out := make([]*Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, it := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := Compute(it.Index, it.Proof, it.Public)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, r := range out {
			r.Free()
		}
		return nil, plonk.Wrap("oracle.ComputeBatch", err)
	}
	return out, nil
}

// Curve returns the configuration of r.
func (r *Result) Curve() curve.Curve {
	if r == nil {
		return curve.Unknown
	}
	return r.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (r *Result) Free() {
	if r == nil {
		return
	}
	r.owned.Free()
	runtime.SetFinalizer(r, nil)
}

func (r *Result) payload(op string) (*payload, error) {
	if r == nil {
		return nil, plonk.Errorf(op, "%w: nil result", plonk.ErrInvalidHandle)
	}
	var out *payload
	err := registry.With(&r.owned, registry.KindOracleResult, func(p *payload) error {
		out = p
		return nil
	})
	runtime.KeepAlive(r)
	return out, plonk.Wrap(op, err)
}

// Accepted reports whether the proof verified.
func (r *Result) Accepted() (bool, error) {
	p, err := r.payload("Result.Accepted")
	if err != nil {
		return false, err
	}
	return p.accepted, nil
}

// Err returns nil for an accepted proof and an error wrapping
// plonk.ErrVerificationFailed otherwise. A reclaimed result reports
// plonk.ErrInvalidHandle.
func (r *Result) Err() error {
	p, err := r.payload("Result.Err")
	if err != nil {
		return err
	}
	return plonk.Wrap("oracle.Compute", p.reason)
}

// Challenges returns new scalar handles for the round challenges gamma, beta,
// alpha and zeta.
func (r *Result) Challenges() (*Challenges, error) {
	const op = "Result.Challenges"
	p, err := r.payload(op)
	if err != nil {
		return nil, err
	}
	var out Challenges
	for _, f := range []struct {
		dst **curve.Scalar
		e   backend.Elem
	}{
		{&out.Gamma, p.ch.Gamma},
		{&out.Beta, p.ch.Beta},
		{&out.Alpha, p.ch.Alpha},
		{&out.Zeta, p.ch.Zeta},
	} {
		if *f.dst, err = curve.NewScalarFromBackend(r.curve, f.e); err != nil {
			return nil, plonk.Wrap(op, err)
		}
	}
	return &out, nil
}

// PublicDigest returns the BLAKE3 digest of the public inputs the result was
// computed over.
func (r *Result) PublicDigest() ([32]byte, error) {
	p, err := r.payload("Result.PublicDigest")
	if err != nil {
		return [32]byte{}, err
	}
	return p.digest, nil
}

// Evaluations returns the claimed evaluations carried by the proof.
func (r *Result) Evaluations() (*vector.Vector, error) {
	const op = "Result.Evaluations"
	p, err := r.payload(op)
	if err != nil {
		return nil, err
	}
	v, err := vector.NewFromBackend(r.curve, append([]backend.Elem(nil), p.evals...))
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	return v, plonk.Wrap(op, v.Freeze())
}

// Report is a host-side snapshot of a Result. Scalars are decimal strings.
type Report struct {
	Curve        string   `json:"curve" cbor:"1,keyasint"`
	Accepted     bool     `json:"accepted" cbor:"2,keyasint"`
	Reason       string   `json:"reason,omitempty" cbor:"3,keyasint,omitempty"`
	Gamma        string   `json:"gamma" cbor:"4,keyasint"`
	Beta         string   `json:"beta" cbor:"5,keyasint"`
	Alpha        string   `json:"alpha" cbor:"6,keyasint"`
	Zeta         string   `json:"zeta" cbor:"7,keyasint"`
	PublicDigest []byte   `json:"public_digest" cbor:"8,keyasint"`
	Evaluations  []string `json:"evaluations" cbor:"9,keyasint"`
}

// Report snapshots r.
func (r *Result) Report() (*Report, error) {
	p, err := r.payload("Result.Report")
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Curve:        r.curve.String(),
		Accepted:     p.accepted,
		Gamma:        p.ch.Gamma.String(),
		Beta:         p.ch.Beta.String(),
		Alpha:        p.ch.Alpha.String(),
		Zeta:         p.ch.Zeta.String(),
		PublicDigest: append([]byte(nil), p.digest[:]...),
		Evaluations:  make([]string, len(p.evals)),
	}
	if p.reason != nil {
		rep.Reason = p.reason.Error()
	}
	for i, e := range p.evals {
		rep.Evaluations[i] = e.String()
	}
	return rep, nil
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// MarshalCBOR encodes the Report of r deterministically.
func (r *Result) MarshalCBOR() ([]byte, error) {
	rep, err := r.Report()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(rep)
}
