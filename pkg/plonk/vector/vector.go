package vector

import (
	"fmt"
	"math/big"
	"runtime"
	"sync"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
)

type store struct {
	mu       sync.RWMutex
	elems    []backend.Elem
	frozen   bool
	elemSize int64
}

func (s *store) SizeBytes() int64 {
	return int64(len(s.elems)) * s.elemSize
}

// Release drops the element references so witness values do not outlive
// the handle.
func (s *store) Release() {
	s.mu.Lock()
	clear(s.elems)
	s.elems = nil
	s.mu.Unlock()
}

// Vector is a handle to an ordered list of scalars of one configuration.
type Vector struct {
	owned registry.Owned
	curve curve.Curve
}

// NewFromBackend takes ownership of elems in the active registry.
// This is exported for use by the object subpackages.
func NewFromBackend(c curve.Curve, elems []backend.Elem) (*Vector, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, err
	}
	st := &store{elems: elems, elemSize: int64(b.ElemLen())}
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindVector, c.Tag(), st)
	if err != nil {
		return nil, err
	}
	v := &Vector{curve: c}
	v.owned.Init(reg, h)
	runtime.SetFinalizer(v, (*Vector).Free)
	return v, nil
}

func elemsOf(c curve.Curve, scalars []*curve.Scalar) ([]backend.Elem, error) {
	elems := make([]backend.Elem, len(scalars))
	for i, s := range scalars {
		if err := curve.Check(c, s.Curve()); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		e, err := s.Elem()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elems[i] = e
	}
	return elems, nil
}

// New builds a vector holding copies of scalars.
func New(c curve.Curve, scalars ...*curve.Scalar) (*Vector, error) {
	elems, err := elemsOf(c, scalars)
	if err != nil {
		return nil, plonk.Wrap("vector.New", err)
	}
	v, err := NewFromBackend(c, elems)
	return v, plonk.Wrap("vector.New", err)
}

// FromBigInts builds a vector from integers reduced modulo the field.
func FromBigInts(c curve.Curve, vals []*big.Int) (*Vector, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap("vector.FromBigInts", err)
	}
	elems := make([]backend.Elem, len(vals))
	for i, x := range vals {
		if x == nil {
			return nil, plonk.Errorf("vector.FromBigInts", "element %d is nil", i)
		}
		elems[i] = b.ElemFromBigInt(x)
	}
	v, err := NewFromBackend(c, elems)
	return v, plonk.Wrap("vector.FromBigInts", err)
}

// FromUint64s builds a vector from small integers.
func FromUint64s(c curve.Curve, vals ...uint64) (*Vector, error) {
	bs := make([]*big.Int, len(vals))
	for i, x := range vals {
		bs[i] = new(big.Int).SetUint64(x)
	}
	return FromBigInts(c, bs)
}

// Curve returns the configuration of v.
func (v *Vector) Curve() curve.Curve {
	if v == nil {
		return curve.Unknown
	}
	return v.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (v *Vector) Free() {
	if v == nil {
		return
	}
	v.owned.Free()
	runtime.SetFinalizer(v, nil)
}

func (v *Vector) with(op string, fn func(*store) error) error {
	if v == nil {
		return plonk.Errorf(op, "%w: nil vector", plonk.ErrInvalidHandle)
	}
	err := registry.With(&v.owned, registry.KindVector, fn)
	runtime.KeepAlive(v)
	return plonk.Wrap(op, err)
}

// Len returns the number of elements.
func (v *Vector) Len() (int, error) {
	var n int
	err := v.with("Vector.Len", func(s *store) error {
		s.mu.RLock()
		n = len(s.elems)
		s.mu.RUnlock()
		return nil
	})
	return n, err
}

// Get returns a copy of element i.
func (v *Vector) Get(i int) (*curve.Scalar, error) {
	var e backend.Elem
	err := v.with("Vector.Get", func(s *store) error {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if i < 0 || i >= len(s.elems) {
			return fmt.Errorf("%w: %d of %d", plonk.ErrIndexOutOfRange, i, len(s.elems))
		}
		e = s.elems[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	sc, err := curve.NewScalarFromBackend(v.curve, e)
	return sc, plonk.Wrap("Vector.Get", err)
}

func (v *Vector) withScalars(op string, scalars []*curve.Scalar, fn func(*store, []backend.Elem) error) error {
	if v == nil {
		return plonk.Errorf(op, "%w: nil vector", plonk.ErrInvalidHandle)
	}
	elems, err := elemsOf(v.curve, scalars)
	if err != nil {
		return plonk.Wrap(op, err)
	}
	return v.with(op, func(s *store) error { return fn(s, elems) })
}

// Set replaces element i. It fails with plonk.ErrFrozen once v is frozen and
// leaves v unchanged on any error.
func (v *Vector) Set(i int, sc *curve.Scalar) error {
	return v.withScalars("Vector.Set", []*curve.Scalar{sc}, func(s *store, elems []backend.Elem) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.frozen {
			return plonk.ErrFrozen
		}
		if i < 0 || i >= len(s.elems) {
			return fmt.Errorf("%w: %d of %d", plonk.ErrIndexOutOfRange, i, len(s.elems))
		}
		s.elems[i] = elems[0]
		return nil
	})
}

// Append adds scalars at the end of v.
func (v *Vector) Append(scalars ...*curve.Scalar) error {
	return v.withScalars("Vector.Append", scalars, func(s *store, elems []backend.Elem) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.frozen {
			return plonk.ErrFrozen
		}
		s.elems = append(s.elems, elems...)
		return nil
	})
}

// Freeze makes v read-only. Freezing twice is allowed.
func (v *Vector) Freeze() error {
	return v.with("Vector.Freeze", func(s *store) error {
		s.mu.Lock()
		s.frozen = true
		s.mu.Unlock()
		return nil
	})
}

// Frozen reports whether v is read-only.
func (v *Vector) Frozen() (bool, error) {
	var frozen bool
	err := v.with("Vector.Frozen", func(s *store) error {
		s.mu.RLock()
		frozen = s.frozen
		s.mu.RUnlock()
		return nil
	})
	return frozen, err
}

// Elems returns a copy of the element list.
// This is exported for use by the object subpackages.
func (v *Vector) Elems() ([]backend.Elem, error) {
	var out []backend.Elem
	err := v.with("Vector.Elems", func(s *store) error {
		s.mu.RLock()
		out = append([]backend.Elem(nil), s.elems...)
		s.mu.RUnlock()
		return nil
	})
	return out, err
}

// Consume freezes v and returns a copy of its elements. Index and proof
// operations call it on the vectors they are given.
// This is exported for use by the object subpackages.
func (v *Vector) Consume() ([]backend.Elem, error) {
	var out []backend.Elem
	err := v.with("Vector.Consume", func(s *store) error {
		s.mu.Lock()
		s.frozen = true
		out = append([]backend.Elem(nil), s.elems...)
		s.mu.Unlock()
		return nil
	})
	return out, err
}

// Slice returns a new vector holding elements [lo, hi).
func (v *Vector) Slice(lo, hi int) (*Vector, error) {
	var out []backend.Elem
	err := v.with("Vector.Slice", func(s *store) error {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if lo < 0 || hi < lo || hi > len(s.elems) {
			return fmt.Errorf("%w: [%d, %d) of %d", plonk.ErrIndexOutOfRange, lo, hi, len(s.elems))
		}
		out = append([]backend.Elem(nil), s.elems[lo:hi]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	nv, err := NewFromBackend(v.curve, out)
	return nv, plonk.Wrap("Vector.Slice", err)
}

// Concat returns a new vector holding v followed by o. v and o may be the
// same vector.
func (v *Vector) Concat(o *Vector) (*Vector, error) {
	const op = "Vector.Concat"
	if v == nil || o == nil {
		return nil, plonk.Errorf(op, "%w: nil vector", plonk.ErrInvalidHandle)
	}
	if err := curve.Check(v.curve, o.curve); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	var out []backend.Elem
	err := registry.BorrowAll([]registry.Want{
		{Owner: &v.owned, Kind: registry.KindVector},
		{Owner: &o.owned, Kind: registry.KindVector},
	}, func(ps []any) error {
		a, b := ps[0].(*store), ps[1].(*store)
		a.mu.RLock()
		out = append(out, a.elems...)
		a.mu.RUnlock()
		b.mu.RLock()
		out = append(out, b.elems...)
		b.mu.RUnlock()
		return nil
	})
	runtime.KeepAlive(v)
	runtime.KeepAlive(o)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	nv, err := NewFromBackend(v.curve, out)
	return nv, plonk.Wrap(op, err)
}

// ToHostList returns the elements as canonical integers.
func (v *Vector) ToHostList() ([]*big.Int, error) {
	elems, err := v.Elems()
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(elems))
	for i, e := range elems {
		out[i] = e.BigInt()
	}
	return out, nil
}

// Equal reports whether v and o have the same length and elements.
func (v *Vector) Equal(o *Vector) (bool, error) {
	const op = "Vector.Equal"
	if v == nil || o == nil {
		return false, plonk.Errorf(op, "%w: nil vector", plonk.ErrInvalidHandle)
	}
	if err := curve.Check(v.curve, o.curve); err != nil {
		return false, plonk.Wrap(op, err)
	}
	a, err := v.Elems()
	if err != nil {
		return false, err
	}
	b, err := o.Elems()
	if err != nil {
		return false, err
	}
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false, nil
		}
	}
	return true, nil
}
