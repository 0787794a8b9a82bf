package backend

import (
	"fmt"
	"math/big"
)

// Point is a G1 point of one curve configuration, including the point at
// infinity.
type Point interface {
	Add(Point) Point
	Sub(Point) Point
	Neg() Point
	ScalarMul(Elem) Point
	Equal(Point) bool
	IsInfinity() bool
	// Bytes returns the compressed encoding.
	Bytes() []byte
	// Raw returns the uncompressed encoding bound into transcripts.
	Raw() []byte
}

// groupPtr is the method set every gnark-crypto G1Affine provides.
type groupPtr[G any] interface {
	*G
	Add(*G, *G) *G
	Sub(*G, *G) *G
	Neg(*G) *G
	ScalarMultiplication(*G, *big.Int) *G
	ScalarMultiplicationBase(*big.Int) *G
	Equal(*G) bool
	IsInfinity() bool
	Marshal() []byte
	SetBytes([]byte) (int, error)
}

type point[G any, PG groupPtr[G]] struct {
	v        G
	compress func(*G) []byte
}

func (p *point[G, PG]) other(q Point) *G {
	o, ok := q.(*point[G, PG])
	if !ok {
		panic(fmt.Sprintf("backend: mixed group element types %T and %T", p, q))
	}
	return &o.v
}

func (p *point[G, PG]) derive() *point[G, PG] {
	return &point[G, PG]{compress: p.compress}
}

func (p *point[G, PG]) Add(q Point) Point {
	r := p.derive()
	PG(&r.v).Add(&p.v, p.other(q))
	return r
}

func (p *point[G, PG]) Sub(q Point) Point {
	r := p.derive()
	PG(&r.v).Sub(&p.v, p.other(q))
	return r
}

func (p *point[G, PG]) Neg() Point {
	r := p.derive()
	PG(&r.v).Neg(&p.v)
	return r
}

func (p *point[G, PG]) ScalarMul(s Elem) Point {
	r := p.derive()
	PG(&r.v).ScalarMultiplication(&p.v, s.BigInt())
	return r
}

func (p *point[G, PG]) Equal(q Point) bool { return PG(&p.v).Equal(p.other(q)) }
func (p *point[G, PG]) IsInfinity() bool   { return PG(&p.v).IsInfinity() }
func (p *point[G, PG]) Bytes() []byte      { return p.compress(&p.v) }
func (p *point[G, PG]) Raw() []byte        { return PG(&p.v).Marshal() }

// group builds G1 points of one curve.
type group[G any, PG groupPtr[G]] struct {
	generator G
	compress  func(*G) []byte
}

func (g group[G, PG]) wrap(v G) Point {
	return &point[G, PG]{v: v, compress: g.compress}
}

func (g group[G, PG]) gen() Point { return g.wrap(g.generator) }

// infinity relies on the zero affine value encoding the point at infinity.
func (g group[G, PG]) infinity() Point {
	var z G
	return g.wrap(z)
}

func (g group[G, PG]) baseMul(s *big.Int) Point {
	var r G
	PG(&r).ScalarMultiplicationBase(s)
	return g.wrap(r)
}

// fromBytes accepts compressed or uncompressed encodings and rejects points
// outside the prime-order subgroup.
func (g group[G, PG]) fromBytes(b []byte) (Point, error) {
	var r G
	n, err := PG(&r).SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if n != len(b) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, len(b)-n)
	}
	return g.wrap(r), nil
}

func (g group[G, PG]) raw(p Point) G {
	o, ok := p.(*point[G, PG])
	if !ok {
		panic(fmt.Sprintf("backend: foreign group element %T", p))
	}
	return o.v
}

func (g group[G, PG]) wrapAll(vs []G) []Point {
	out := make([]Point, len(vs))
	for i := range vs {
		out[i] = g.wrap(vs[i])
	}
	return out
}
