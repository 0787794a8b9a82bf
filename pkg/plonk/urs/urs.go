package urs

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"time"

	"github.com/consensys/gnark-crypto/kzg"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/codec"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/logging"
	"github.com/marlinplonk/plonk-go/pkg/plonk/vector"
)

const sectionSRS uint32 = 1

type payload struct {
	srs       kzg.SRS
	size      int
	pointSize int64
}

func (p *payload) SizeBytes() int64 {
	return int64(p.size) * p.pointSize
}

// URS is a handle to a structured reference string of one curve
// configuration.
type URS struct {
	owned registry.Owned
	curve curve.Curve
	size  int
}

func wrap(c curve.Curve, b backend.Backend, srs kzg.SRS) (*URS, error) {
	p := &payload{srs: srs, size: b.SRSSize(srs), pointSize: backend.PointSize(b.ID())}
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindURS, c.Tag(), p)
	if err != nil {
		return nil, err
	}
	u := &URS{curve: c, size: p.size}
	u.owned.Init(reg, h)
	runtime.SetFinalizer(u, (*URS).Free)
	return u, nil
}

func generate(ctx context.Context, op string, c curve.Curve, size int, alpha func(backend.Backend) (*big.Int, error)) (*URS, error) {
	if err := ctx.Err(); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if size < backend.MinURSSize {
		return nil, plonk.Errorf(op, "%w: size %d, minimum %d", plonk.ErrURSTooSmall, size, backend.MinURSSize)
	}
	a, err := alpha(b)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	start := time.Now()
	srs, err := b.NewSRS(uint64(size), a)
	a.SetUint64(0)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	u, err := wrap(c, b, srs)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	plonk.Logger().Info(ctx, "urs generated",
		logging.Curve(c), logging.Handle(u.owned.Handle().ID()),
		"size", size, "duration", time.Since(start), logging.Redacted("alpha"))
	return u, nil
}

// Generate creates a URS of size points from fresh randomness.
func Generate(ctx context.Context, c curve.Curve, size int) (*URS, error) {
	return generate(ctx, "urs.Generate", c, size, func(b backend.Backend) (*big.Int, error) {
		return backend.RandomAlpha(b.ID())
	})
}

// Deterministic creates a URS of size points whose secret is derived from
// seed. The same seed and curve always give the same URS.
func Deterministic(ctx context.Context, c curve.Curve, size int, seed []byte) (*URS, error) {
	if len(seed) == 0 {
		return nil, plonk.Errorf("urs.Deterministic", "empty seed")
	}
	return generate(ctx, "urs.Deterministic", c, size, func(b backend.Backend) (*big.Int, error) {
		return backend.DeriveAlpha(b.ID(), seed), nil
	})
}

// Curve returns the configuration of u.
func (u *URS) Curve() curve.Curve {
	if u == nil {
		return curve.Unknown
	}
	return u.curve
}

// Size returns the number of G1 powers in u, the maximum supported degree
// plus one.
func (u *URS) Size() int {
	if u == nil {
		return 0
	}
	return u.size
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once. Objects
// derived from u stay valid.
func (u *URS) Free() {
	if u == nil {
		return
	}
	u.owned.Free()
	runtime.SetFinalizer(u, nil)
}

// SRS returns the collaborator SRS behind u. The value is shared and must
// not be modified.
// This is exported for use by the object subpackages.
func (u *URS) SRS() (kzg.SRS, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: nil urs", plonk.ErrInvalidHandle)
	}
	var out kzg.SRS
	err := registry.With(&u.owned, registry.KindURS, func(p *payload) error {
		out = p.srs
		return nil
	})
	runtime.KeepAlive(u)
	return out, err
}

func (u *URS) view(op string) (backend.Backend, kzg.SRS, error) {
	b, err := u.Curve().Backend()
	if err != nil {
		return nil, nil, plonk.Wrap(op, err)
	}
	srs, err := u.SRS()
	if err != nil {
		return nil, nil, plonk.Wrap(op, err)
	}
	return b, srs, nil
}

// Truncate returns a new URS holding the first n points of u.
func (u *URS) Truncate(n int) (*URS, error) {
	const op = "URS.Truncate"
	b, srs, err := u.view(op)
	if err != nil {
		return nil, err
	}
	small, err := b.TruncateSRS(srs, n)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := wrap(u.curve, b, small)
	return out, plonk.Wrap(op, err)
}

// Point returns [τ^i]G1.
func (u *URS) Point(i int) (*curve.Point, error) {
	const op = "URS.Point"
	b, srs, err := u.view(op)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= u.size {
		return nil, plonk.Errorf(op, "%w: %d of %d", plonk.ErrIndexOutOfRange, i, u.size)
	}
	p, err := b.SRSPoint(srs, i)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := curve.NewPointFromBackend(u.curve, p)
	return out, plonk.Wrap(op, err)
}

// Commit returns the KZG commitment to the polynomial whose coefficients are
// the elements of v, lowest degree first.
func (u *URS) Commit(v *vector.Vector) (*curve.Point, error) {
	const op = "URS.Commit"
	if err := curve.Check(u.Curve(), v.Curve()); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	b, srs, err := u.view(op)
	if err != nil {
		return nil, err
	}
	coeffs, err := v.Elems()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	c, err := b.Commit(srs, coeffs)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := curve.NewPointFromBackend(u.curve, c)
	return out, plonk.Wrap(op, err)
}

// LagrangeCommitment returns the commitment to the i-th Lagrange basis
// polynomial of the multiplicative domain of the given size, which must be a
// power of two not larger than Size.
func (u *URS) LagrangeCommitment(domain, i int) (*curve.Point, error) {
	const op = "URS.LagrangeCommitment"
	b, srs, err := u.view(op)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= domain {
		return nil, plonk.Errorf(op, "%w: %d of domain %d", plonk.ErrIndexOutOfRange, i, domain)
	}
	lag, err := b.LagrangeSRS(srs, domain)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	p, err := b.SRSPoint(lag, i)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := curve.NewPointFromBackend(u.curve, p)
	return out, plonk.Wrap(op, err)
}

// Encode serializes u.
func (u *URS) Encode() ([]byte, error) {
	const op = "URS.Encode"
	_, srs, err := u.view(op)
	if err != nil {
		return nil, err
	}
	sec, err := codec.Capture(sectionSRS, srs)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	return codec.Encode(codec.Frame{
		Curve:    u.curve.Tag(),
		Kind:     uint32(registry.KindURS),
		Sections: []codec.Section{sec},
	}), nil
}

// Decode parses a URS encoded for configuration c.
func Decode(c curve.Curve, data []byte) (*URS, error) {
	const op = "urs.Decode"
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	f, err := codec.Decode(data, c.Tag(), uint32(registry.KindURS))
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	srs := b.EmptySRS()
	shape := func(raw []byte) error { return b.Scan(backend.ShapeSRS, raw) }
	if err := f.RestoreSection(sectionSRS, shape, srs); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if n := b.SRSSize(srs); n < backend.MinURSSize {
		return nil, plonk.Errorf(op, "%w: %d points", plonk.ErrMalformedEncoding, n)
	}
	u, err := wrap(c, b, srs)
	return u, plonk.Wrap(op, err)
}

// WriteFile stores the encoding of u at path.
func (u *URS) WriteFile(path string) error {
	data, err := u.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return plonk.Wrap("URS.WriteFile", err)
	}
	return nil
}

// ReadFile loads a URS for configuration c from path.
func ReadFile(c curve.Curve, path string) (*URS, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller chooses the artifact path
	if err != nil {
		return nil, plonk.Wrap("urs.ReadFile", err)
	}
	return Decode(c, data)
}
