package backend

import (
	"fmt"
	"math/big"
)

// Elem is a scalar field element of one curve configuration. Elements of
// different configurations must never be combined; callers check the curve
// before calling into an Elem.
type Elem interface {
	Add(Elem) Elem
	Sub(Elem) Elem
	Mul(Elem) Elem
	Div(Elem) (Elem, error)
	Neg() Elem
	Square() Elem
	Inverse() (Elem, error)
	Equal(Elem) bool
	Cmp(Elem) int
	IsZero() bool
	BigInt() *big.Int
	Bytes() []byte
	String() string
}

// fieldPtr is the method set every gnark-crypto fr.Element provides.
type fieldPtr[E any] interface {
	*E
	Add(*E, *E) *E
	Sub(*E, *E) *E
	Mul(*E, *E) *E
	Square(*E) *E
	Neg(*E) *E
	Inverse(*E) *E
	SetOne() *E
	SetRandom() (*E, error)
	SetBigInt(*big.Int) *E
	SetBytesCanonical([]byte) error
	BigInt(*big.Int) *big.Int
	Marshal() []byte
	Equal(*E) bool
	Cmp(*E) int
	IsZero() bool
	String() string
}

type elem[E any, PE fieldPtr[E]] struct {
	v E
}

func (a *elem[E, PE]) other(b Elem) *E {
	o, ok := b.(*elem[E, PE])
	if !ok {
		panic(fmt.Sprintf("backend: mixed field element types %T and %T", a, b))
	}
	return &o.v
}

func (a *elem[E, PE]) Add(b Elem) Elem {
	r := new(elem[E, PE])
	PE(&r.v).Add(&a.v, a.other(b))
	return r
}

func (a *elem[E, PE]) Sub(b Elem) Elem {
	r := new(elem[E, PE])
	PE(&r.v).Sub(&a.v, a.other(b))
	return r
}

func (a *elem[E, PE]) Mul(b Elem) Elem {
	r := new(elem[E, PE])
	PE(&r.v).Mul(&a.v, a.other(b))
	return r
}

func (a *elem[E, PE]) Div(b Elem) (Elem, error) {
	inv, err := b.Inverse()
	if err != nil {
		return nil, err
	}
	return a.Mul(inv), nil
}

func (a *elem[E, PE]) Neg() Elem {
	r := new(elem[E, PE])
	PE(&r.v).Neg(&a.v)
	return r
}

func (a *elem[E, PE]) Square() Elem {
	r := new(elem[E, PE])
	PE(&r.v).Square(&a.v)
	return r
}

func (a *elem[E, PE]) Inverse() (Elem, error) {
	if PE(&a.v).IsZero() {
		return nil, ErrDivisionByZero
	}
	r := new(elem[E, PE])
	PE(&r.v).Inverse(&a.v)
	return r, nil
}

func (a *elem[E, PE]) Equal(b Elem) bool { return PE(&a.v).Equal(a.other(b)) }
func (a *elem[E, PE]) Cmp(b Elem) int    { return PE(&a.v).Cmp(a.other(b)) }
func (a *elem[E, PE]) IsZero() bool      { return PE(&a.v).IsZero() }
func (a *elem[E, PE]) String() string    { return PE(&a.v).String() }

func (a *elem[E, PE]) BigInt() *big.Int {
	return PE(&a.v).BigInt(new(big.Int))
}

// Bytes returns the canonical big-endian encoding.
func (a *elem[E, PE]) Bytes() []byte {
	return PE(&a.v).Marshal()
}

// field builds elements of one scalar field.
type field[E any, PE fieldPtr[E]] struct {
	modulus *big.Int
}

func (f field[E, PE]) zero() Elem { return new(elem[E, PE]) }

func (f field[E, PE]) one() Elem {
	r := new(elem[E, PE])
	PE(&r.v).SetOne()
	return r
}

func (f field[E, PE]) fromBigInt(v *big.Int) Elem {
	r := new(elem[E, PE])
	PE(&r.v).SetBigInt(v)
	return r
}

func (f field[E, PE]) fromBytes(b []byte) (Elem, error) {
	r := new(elem[E, PE])
	if err := PE(&r.v).SetBytesCanonical(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return r, nil
}

func (f field[E, PE]) random() (Elem, error) {
	r := new(elem[E, PE])
	if _, err := PE(&r.v).SetRandom(); err != nil {
		return nil, err
	}
	return r, nil
}

func (f field[E, PE]) byteLen() int {
	var z E
	return len(PE(&z).Marshal())
}

// raw unwraps elements for the per-curve KZG and PLONK code.
func (f field[E, PE]) raw(es []Elem) []E {
	out := make([]E, len(es))
	for i, e := range es {
		o, ok := e.(*elem[E, PE])
		if !ok {
			panic(fmt.Sprintf("backend: foreign field element %T", e))
		}
		out[i] = o.v
	}
	return out
}

func (f field[E, PE]) wrap(v E) Elem {
	return &elem[E, PE]{v: v}
}
