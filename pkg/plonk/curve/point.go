package curve

import (
	"fmt"
	"runtime"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
)

// Point is a handle to a G1 point, possibly the point at infinity.
type Point struct {
	owned registry.Owned
	curve Curve
}

// NewPointFromBackend takes ownership of p in the active registry.
// This is exported for use by the object subpackages.
func NewPointFromBackend(c Curve, p backend.Point) (*Point, error) {
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindPoint, c.Tag(), p)
	if err != nil {
		return nil, err
	}
	pt := &Point{curve: c}
	pt.owned.Init(reg, h)
	runtime.SetFinalizer(pt, (*Point).Free)
	return pt, nil
}

func newPoint(op string, c Curve, build func(backend.Backend) (backend.Point, error)) (*Point, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	p, err := build(b)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	pt, err := NewPointFromBackend(c, p)
	return pt, plonk.Wrap(op, err)
}

// Generator returns the fixed G1 generator of c.
func Generator(c Curve) (*Point, error) {
	return newPoint("Generator", c, func(b backend.Backend) (backend.Point, error) {
		return b.Generator(), nil
	})
}

// Infinity returns the identity of G1.
func Infinity(c Curve) (*Point, error) {
	return newPoint("Infinity", c, func(b backend.Backend) (backend.Point, error) {
		return b.Infinity(), nil
	})
}

// RandomPoint returns k·G for a uniform scalar k.
func RandomPoint(c Curve) (*Point, error) {
	return newPoint("RandomPoint", c, func(b backend.Backend) (backend.Point, error) {
		k, err := b.RandomElem()
		if err != nil {
			return nil, err
		}
		return b.BaseMul(k.BigInt()), nil
	})
}

// MulGenerator returns s·G.
func MulGenerator(s *Scalar) (*Point, error) {
	e, err := s.Elem()
	if err != nil {
		return nil, plonk.Wrap("MulGenerator", err)
	}
	return newPoint("MulGenerator", s.Curve(), func(b backend.Backend) (backend.Point, error) {
		return b.BaseMul(e.BigInt()), nil
	})
}

// NewPointFromBytes decodes a compressed or uncompressed encoding. Points
// outside the prime-order subgroup are rejected.
func NewPointFromBytes(c Curve, b []byte) (*Point, error) {
	return newPoint("NewPointFromBytes", c, func(be backend.Backend) (backend.Point, error) {
		return be.PointFromBytes(b)
	})
}

// Curve returns the configuration of p.
func (p *Point) Curve() Curve {
	if p == nil {
		return Unknown
	}
	return p.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (p *Point) Free() {
	if p == nil {
		return
	}
	p.owned.Free()
	runtime.SetFinalizer(p, nil)
}

// Backend returns the collaborator value behind p. Points are immutable.
// This is exported for use by the object subpackages.
func (p *Point) Backend() (backend.Point, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil point", plonk.ErrInvalidHandle)
	}
	var out backend.Point
	err := registry.With(&p.owned, registry.KindPoint, func(v backend.Point) error {
		out = v
		return nil
	})
	runtime.KeepAlive(p)
	return out, err
}

func (p *Point) binary(op string, q *Point, f func(a, b backend.Point) backend.Point) (*Point, error) {
	if p == nil || q == nil {
		return nil, plonk.Errorf(op, "%w: nil point", plonk.ErrInvalidHandle)
	}
	if err := Check(p.curve, q.curve); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	var r backend.Point
	err := registry.BorrowAll([]registry.Want{
		{Owner: &p.owned, Kind: registry.KindPoint},
		{Owner: &q.owned, Kind: registry.KindPoint},
	}, func(ps []any) error {
		r = f(ps[0].(backend.Point), ps[1].(backend.Point))
		return nil
	})
	runtime.KeepAlive(p)
	runtime.KeepAlive(q)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := NewPointFromBackend(p.curve, r)
	return out, plonk.Wrap(op, err)
}

// Add returns p + q.
func (p *Point) Add(q *Point) (*Point, error) {
	return p.binary("Point.Add", q, func(a, b backend.Point) backend.Point { return a.Add(b) })
}

// Sub returns p - q.
func (p *Point) Sub(q *Point) (*Point, error) {
	return p.binary("Point.Sub", q, func(a, b backend.Point) backend.Point { return a.Sub(b) })
}

// Neg returns -p.
func (p *Point) Neg() (*Point, error) {
	v, err := p.Backend()
	if err != nil {
		return nil, plonk.Wrap("Point.Neg", err)
	}
	out, err := NewPointFromBackend(p.curve, v.Neg())
	return out, plonk.Wrap("Point.Neg", err)
}

// Mul returns s·p.
func (p *Point) Mul(s *Scalar) (*Point, error) {
	const op = "Point.Mul"
	if p == nil || s == nil {
		return nil, plonk.Errorf(op, "%w: nil operand", plonk.ErrInvalidHandle)
	}
	if err := Check(p.curve, s.curve); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	var r backend.Point
	err := registry.BorrowAll([]registry.Want{
		{Owner: &p.owned, Kind: registry.KindPoint},
		{Owner: &s.owned, Kind: registry.KindScalar},
	}, func(ps []any) error {
		r = ps[0].(backend.Point).ScalarMul(ps[1].(backend.Elem))
		return nil
	})
	runtime.KeepAlive(p)
	runtime.KeepAlive(s)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := NewPointFromBackend(p.curve, r)
	return out, plonk.Wrap(op, err)
}

// Equal reports whether p and q are the same point.
func (p *Point) Equal(q *Point) (bool, error) {
	const op = "Point.Equal"
	if p == nil || q == nil {
		return false, plonk.Errorf(op, "%w: nil point", plonk.ErrInvalidHandle)
	}
	if err := Check(p.curve, q.curve); err != nil {
		return false, plonk.Wrap(op, err)
	}
	var eq bool
	err := registry.BorrowAll([]registry.Want{
		{Owner: &p.owned, Kind: registry.KindPoint},
		{Owner: &q.owned, Kind: registry.KindPoint},
	}, func(ps []any) error {
		eq = ps[0].(backend.Point).Equal(ps[1].(backend.Point))
		return nil
	})
	runtime.KeepAlive(p)
	runtime.KeepAlive(q)
	return eq, plonk.Wrap(op, err)
}

// IsInfinity reports whether p is the identity.
func (p *Point) IsInfinity() (bool, error) {
	v, err := p.Backend()
	if err != nil {
		return false, plonk.Wrap("Point.IsInfinity", err)
	}
	return v.IsInfinity(), nil
}

// Bytes returns the compressed encoding of p.
func (p *Point) Bytes() ([]byte, error) {
	v, err := p.Backend()
	if err != nil {
		return nil, plonk.Wrap("Point.Bytes", err)
	}
	return v.Bytes(), nil
}
