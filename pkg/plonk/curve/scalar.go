package curve

import (
	"fmt"
	"math/big"
	"runtime"
	"strings"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
)

// Scalar is a handle to an element of a curve's scalar field. Its value is
// the canonical residue and never changes; arithmetic returns new scalars.
//
// Concurrency Safety:
//   - Scalar methods are safe to call concurrently from multiple goroutines.
//   - Free may race with other methods; they then fail with
//     plonk.ErrInvalidHandle instead of observing freed memory.
type Scalar struct {
	owned registry.Owned
	curve Curve
}

// NewScalarFromBackend takes ownership of e in the active registry.
// This is exported for use by the object subpackages.
func NewScalarFromBackend(c Curve, e backend.Elem) (*Scalar, error) {
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindScalar, c.Tag(), e)
	if err != nil {
		return nil, err
	}
	s := &Scalar{curve: c}
	s.owned.Init(reg, h)
	runtime.SetFinalizer(s, (*Scalar).Free)
	return s, nil
}

func newScalar(op string, c Curve, build func(backend.Backend) (backend.Elem, error)) (*Scalar, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	e, err := build(b)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	s, err := NewScalarFromBackend(c, e)
	return s, plonk.Wrap(op, err)
}

// NewScalar reduces v modulo the scalar field of c.
func NewScalar(c Curve, v *big.Int) (*Scalar, error) {
	if v == nil {
		return nil, plonk.Errorf("NewScalar", "nil value")
	}
	return newScalar("NewScalar", c, func(b backend.Backend) (backend.Elem, error) {
		return b.ElemFromBigInt(v), nil
	})
}

// NewScalarFromUint64 returns v as a scalar of c.
func NewScalarFromUint64(c Curve, v uint64) (*Scalar, error) {
	return NewScalar(c, new(big.Int).SetUint64(v))
}

// NewScalarFromString parses a decimal string, or a hexadecimal one with a
// 0x prefix. Negative values are reduced modulo the field.
func NewScalarFromString(c Curve, str string) (*Scalar, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, plonk.Errorf("NewScalarFromString", "empty string")
	}
	v, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return nil, plonk.Errorf("NewScalarFromString", "invalid number %q", str)
	}
	return NewScalar(c, v)
}

// NewScalarFromBytes decodes a canonical big-endian encoding of exactly
// c.ByteLen() bytes.
func NewScalarFromBytes(c Curve, b []byte) (*Scalar, error) {
	return newScalar("NewScalarFromBytes", c, func(be backend.Backend) (backend.Elem, error) {
		return be.ElemFromBytes(b)
	})
}

// RandomScalar samples a uniform scalar of c.
func RandomScalar(c Curve) (*Scalar, error) {
	return newScalar("RandomScalar", c, func(b backend.Backend) (backend.Elem, error) {
		return b.RandomElem()
	})
}

// Zero returns the additive identity of c.
func Zero(c Curve) (*Scalar, error) {
	return newScalar("Zero", c, func(b backend.Backend) (backend.Elem, error) {
		return b.Zero(), nil
	})
}

// One returns the multiplicative identity of c.
func One(c Curve) (*Scalar, error) {
	return newScalar("One", c, func(b backend.Backend) (backend.Elem, error) {
		return b.One(), nil
	})
}

// Curve returns the configuration of s.
func (s *Scalar) Curve() Curve {
	if s == nil {
		return Unknown
	}
	return s.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (s *Scalar) Free() {
	if s == nil {
		return
	}
	s.owned.Free()
	runtime.SetFinalizer(s, nil)
}

// Elem returns the collaborator value behind s. Elements are immutable, so
// the value stays usable after s is freed.
// This is exported for use by the object subpackages.
func (s *Scalar) Elem() (backend.Elem, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil scalar", plonk.ErrInvalidHandle)
	}
	var out backend.Elem
	err := registry.With(&s.owned, registry.KindScalar, func(e backend.Elem) error {
		out = e
		return nil
	})
	runtime.KeepAlive(s)
	return out, err
}

func (s *Scalar) unary(op string, f func(backend.Elem) (backend.Elem, error)) (*Scalar, error) {
	e, err := s.Elem()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	r, err := f(e)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := NewScalarFromBackend(s.curve, r)
	return out, plonk.Wrap(op, err)
}

func (s *Scalar) binary(op string, o *Scalar, f func(a, b backend.Elem) (backend.Elem, error)) (*Scalar, error) {
	if s == nil || o == nil {
		return nil, plonk.Errorf(op, "%w: nil scalar", plonk.ErrInvalidHandle)
	}
	if err := Check(s.curve, o.curve); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	var r backend.Elem
	err := registry.BorrowAll([]registry.Want{
		{Owner: &s.owned, Kind: registry.KindScalar},
		{Owner: &o.owned, Kind: registry.KindScalar},
	}, func(ps []any) error {
		var err error
		r, err = f(ps[0].(backend.Elem), ps[1].(backend.Elem))
		return err
	})
	runtime.KeepAlive(s)
	runtime.KeepAlive(o)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	out, err := NewScalarFromBackend(s.curve, r)
	return out, plonk.Wrap(op, err)
}

// Add returns s + o.
func (s *Scalar) Add(o *Scalar) (*Scalar, error) {
	return s.binary("Scalar.Add", o, func(a, b backend.Elem) (backend.Elem, error) { return a.Add(b), nil })
}

// Sub returns s - o.
func (s *Scalar) Sub(o *Scalar) (*Scalar, error) {
	return s.binary("Scalar.Sub", o, func(a, b backend.Elem) (backend.Elem, error) { return a.Sub(b), nil })
}

// Mul returns s · o.
func (s *Scalar) Mul(o *Scalar) (*Scalar, error) {
	return s.binary("Scalar.Mul", o, func(a, b backend.Elem) (backend.Elem, error) { return a.Mul(b), nil })
}

// Div returns s / o, failing with plonk.ErrDivisionByZero when o is zero.
func (s *Scalar) Div(o *Scalar) (*Scalar, error) {
	return s.binary("Scalar.Div", o, func(a, b backend.Elem) (backend.Elem, error) { return a.Div(b) })
}

// Neg returns -s.
func (s *Scalar) Neg() (*Scalar, error) {
	return s.unary("Scalar.Neg", func(a backend.Elem) (backend.Elem, error) { return a.Neg(), nil })
}

// Square returns s².
func (s *Scalar) Square() (*Scalar, error) {
	return s.unary("Scalar.Square", func(a backend.Elem) (backend.Elem, error) { return a.Square(), nil })
}

// Inverse returns 1/s.
func (s *Scalar) Inverse() (*Scalar, error) {
	return s.unary("Scalar.Inverse", func(a backend.Elem) (backend.Elem, error) { return a.Inverse() })
}

func (s *Scalar) compare(op string, o *Scalar) (int, error) {
	if s == nil || o == nil {
		return 0, plonk.Errorf(op, "%w: nil scalar", plonk.ErrInvalidHandle)
	}
	if err := Check(s.curve, o.curve); err != nil {
		return 0, plonk.Wrap(op, err)
	}
	var cmp int
	err := registry.BorrowAll([]registry.Want{
		{Owner: &s.owned, Kind: registry.KindScalar},
		{Owner: &o.owned, Kind: registry.KindScalar},
	}, func(ps []any) error {
		cmp = ps[0].(backend.Elem).Cmp(ps[1].(backend.Elem))
		return nil
	})
	runtime.KeepAlive(s)
	runtime.KeepAlive(o)
	return cmp, plonk.Wrap(op, err)
}

// Equal reports whether s and o hold the same residue.
func (s *Scalar) Equal(o *Scalar) (bool, error) {
	cmp, err := s.compare("Scalar.Equal", o)
	return err == nil && cmp == 0, err
}

// Cmp orders s and o by canonical residue.
func (s *Scalar) Cmp(o *Scalar) (int, error) {
	return s.compare("Scalar.Cmp", o)
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() (bool, error) {
	e, err := s.Elem()
	if err != nil {
		return false, plonk.Wrap("Scalar.IsZero", err)
	}
	return e.IsZero(), nil
}

// Bytes returns the canonical big-endian encoding.
func (s *Scalar) Bytes() ([]byte, error) {
	e, err := s.Elem()
	if err != nil {
		return nil, plonk.Wrap("Scalar.Bytes", err)
	}
	return e.Bytes(), nil
}

// BigInt returns the canonical residue.
func (s *Scalar) BigInt() (*big.Int, error) {
	e, err := s.Elem()
	if err != nil {
		return nil, plonk.Wrap("Scalar.BigInt", err)
	}
	return e.BigInt(), nil
}

// String returns the residue in decimal, or "<freed>" once s is freed.
func (s *Scalar) String() string {
	v, err := s.BigInt()
	if err != nil {
		return "<freed>"
	}
	return v.String()
}
