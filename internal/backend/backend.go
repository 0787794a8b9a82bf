package backend

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/kzg"
	gnarkplonk "github.com/consensys/gnark/backend/plonk"
)

// Backend is the collaborator surface for one curve configuration.
type Backend interface {
	ID() ecc.ID
	Modulus() *big.Int
	ElemLen() int

	Zero() Elem
	One() Elem
	ElemFromBigInt(*big.Int) Elem
	ElemFromBytes([]byte) (Elem, error)
	RandomElem() (Elem, error)

	Generator() Point
	Infinity() Point
	BaseMul(*big.Int) Point
	PointFromBytes([]byte) (Point, error)

	NewSRS(size uint64, alpha *big.Int) (kzg.SRS, error)
	EmptySRS() kzg.SRS
	SRSSize(kzg.SRS) int
	TruncateSRS(s kzg.SRS, n int) (kzg.SRS, error)
	LagrangeSRS(s kzg.SRS, n int) (kzg.SRS, error)
	SRSPoint(s kzg.SRS, i int) (Point, error)
	Commit(s kzg.SRS, coeffs []Elem) (Point, error)

	ProofView(gnarkplonk.Proof) (*ProofView, error)
	VerifyingKeyView(gnarkplonk.VerifyingKey) (*VerifyingKeyView, error)

	// Scan checks that data has the layout of shape before any gnark
	// decoder sees it.
	Scan(shape Shape, data []byte) error
}

// ProofView exposes the commitments and evaluations carried by a proof.
type ProofView struct {
	LRO             [3]Point
	Z               Point
	H               [3]Point
	Bsb22           []Point
	BatchOpening    Point
	ZShiftedOpening Point

	// Claimed holds the batched opening evaluations at zeta followed by the
	// evaluation of Z at zeta times the domain generator.
	Claimed []Elem
}

// VerifyingKeyView exposes the commitments bound into the transcript.
type VerifyingKeyView struct {
	Size     uint64
	NbPublic uint64
	S        [3]Point
	Ql       Point
	Qr       Point
	Qm       Point
	Qo       Point
	Qk       Point
	Qcp      []Point
}

var (
	mu       sync.RWMutex
	backends = make(map[ecc.ID]Backend)
)

func register(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	backends[b.ID()] = b
}

// For returns the backend registered for id.
func For(id ecc.ID) (Backend, error) {
	mu.RLock()
	b, ok := backends[id]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfiguration, id)
	}
	return b, nil
}

// proofParts and vkParts are filled by the per-curve view functions.
type proofParts[E, G any] struct {
	lro             [3]G
	z               G
	h               [3]G
	bsb22           []G
	batchOpening    G
	zShiftedOpening G
	claimed         []E
	zShifted        E
}

type vkParts[G any] struct {
	size     uint64
	nbPublic uint64
	s        [3]G
	ql       G
	qr       G
	qm       G
	qo       G
	qk       G
	qcp      []G
}

// hooks carries the code that needs concrete per-curve types.
type hooks[E, G any] struct {
	newSRS   func(size uint64, alpha *big.Int) (kzg.SRS, error)
	srsLen   func(kzg.SRS) int
	truncate func(kzg.SRS, int) kzg.SRS
	lagrange func(kzg.SRS, int) (kzg.SRS, error)
	srsPoint func(kzg.SRS, int) G
	commit   func(kzg.SRS, []E) (G, error)
	proof    func(gnarkplonk.Proof) (*proofParts[E, G], bool)
	vk       func(gnarkplonk.VerifyingKey) (*vkParts[G], bool)
	layout   layout
}

type curveBackend[E any, PE fieldPtr[E], G any, PG groupPtr[G]] struct {
	id    ecc.ID
	field field[E, PE]
	group group[G, PG]
	hooks hooks[E, G]
}

func newCurveBackend[E any, PE fieldPtr[E], G any, PG groupPtr[G]](
	id ecc.ID, generator G, compress func(*G) []byte, h hooks[E, G],
) *curveBackend[E, PE, G, PG] {
	return &curveBackend[E, PE, G, PG]{
		id:    id,
		field: field[E, PE]{modulus: id.ScalarField()},
		group: group[G, PG]{generator: generator, compress: compress},
		hooks: h,
	}
}

func (c *curveBackend[E, PE, G, PG]) ID() ecc.ID        { return c.id }
func (c *curveBackend[E, PE, G, PG]) Modulus() *big.Int { return new(big.Int).Set(c.field.modulus) }
func (c *curveBackend[E, PE, G, PG]) ElemLen() int      { return c.field.byteLen() }
func (c *curveBackend[E, PE, G, PG]) Zero() Elem        { return c.field.zero() }
func (c *curveBackend[E, PE, G, PG]) One() Elem         { return c.field.one() }

func (c *curveBackend[E, PE, G, PG]) ElemFromBigInt(v *big.Int) Elem {
	return c.field.fromBigInt(v)
}

func (c *curveBackend[E, PE, G, PG]) ElemFromBytes(b []byte) (Elem, error) {
	return c.field.fromBytes(b)
}

func (c *curveBackend[E, PE, G, PG]) RandomElem() (Elem, error) { return c.field.random() }

func (c *curveBackend[E, PE, G, PG]) Generator() Point { return c.group.gen() }
func (c *curveBackend[E, PE, G, PG]) Infinity() Point  { return c.group.infinity() }

func (c *curveBackend[E, PE, G, PG]) BaseMul(s *big.Int) Point { return c.group.baseMul(s) }

func (c *curveBackend[E, PE, G, PG]) PointFromBytes(b []byte) (Point, error) {
	return c.group.fromBytes(b)
}

func (c *curveBackend[E, PE, G, PG]) Scan(shape Shape, data []byte) error {
	return c.hooks.layout.scan(shape, data)
}

func (c *curveBackend[E, PE, G, PG]) NewSRS(size uint64, alpha *big.Int) (kzg.SRS, error) {
	if size < MinURSSize {
		return nil, fmt.Errorf("%w: size %d below minimum %d", ErrURSTooSmall, size, MinURSSize)
	}
	return c.hooks.newSRS(size, alpha)
}

func (c *curveBackend[E, PE, G, PG]) EmptySRS() kzg.SRS { return kzg.NewSRS(c.id) }

func (c *curveBackend[E, PE, G, PG]) SRSSize(s kzg.SRS) int { return c.hooks.srsLen(s) }

func (c *curveBackend[E, PE, G, PG]) TruncateSRS(s kzg.SRS, n int) (kzg.SRS, error) {
	if n < MinURSSize || n > c.hooks.srsLen(s) {
		return nil, fmt.Errorf("%w: cannot truncate %d points to %d", ErrURSTooSmall, c.hooks.srsLen(s), n)
	}
	return c.hooks.truncate(s, n), nil
}

func (c *curveBackend[E, PE, G, PG]) LagrangeSRS(s kzg.SRS, n int) (kzg.SRS, error) {
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("backend: lagrange size %d is not a power of two", n)
	}
	if n > c.hooks.srsLen(s) {
		return nil, fmt.Errorf("%w: need %d points, have %d", ErrURSTooSmall, n, c.hooks.srsLen(s))
	}
	return c.hooks.lagrange(s, n)
}

func (c *curveBackend[E, PE, G, PG]) SRSPoint(s kzg.SRS, i int) (Point, error) {
	if i < 0 || i >= c.hooks.srsLen(s) {
		return nil, fmt.Errorf("%w: point %d of %d", ErrURSTooSmall, i, c.hooks.srsLen(s))
	}
	return c.group.wrap(c.hooks.srsPoint(s, i)), nil
}

func (c *curveBackend[E, PE, G, PG]) Commit(s kzg.SRS, coeffs []Elem) (Point, error) {
	if len(coeffs) == 0 {
		return c.group.infinity(), nil
	}
	if len(coeffs) > c.hooks.srsLen(s) {
		return nil, fmt.Errorf("%w: %d coefficients, %d points", ErrURSTooSmall, len(coeffs), c.hooks.srsLen(s))
	}
	d, err := c.hooks.commit(s, c.field.raw(coeffs))
	if err != nil {
		return nil, err
	}
	return c.group.wrap(d), nil
}

func (c *curveBackend[E, PE, G, PG]) ProofView(p gnarkplonk.Proof) (*ProofView, error) {
	parts, ok := c.hooks.proof(p)
	if !ok {
		return nil, fmt.Errorf("%w: proof %T is not a %s proof", ErrUnsupportedConfiguration, p, c.id)
	}
	v := &ProofView{
		Z:               c.group.wrap(parts.z),
		Bsb22:           c.group.wrapAll(parts.bsb22),
		BatchOpening:    c.group.wrap(parts.batchOpening),
		ZShiftedOpening: c.group.wrap(parts.zShiftedOpening),
	}
	for i := 0; i < 3; i++ {
		v.LRO[i] = c.group.wrap(parts.lro[i])
		v.H[i] = c.group.wrap(parts.h[i])
	}
	v.Claimed = make([]Elem, 0, len(parts.claimed)+1)
	for _, e := range parts.claimed {
		v.Claimed = append(v.Claimed, c.field.wrap(e))
	}
	v.Claimed = append(v.Claimed, c.field.wrap(parts.zShifted))
	return v, nil
}

func (c *curveBackend[E, PE, G, PG]) VerifyingKeyView(vk gnarkplonk.VerifyingKey) (*VerifyingKeyView, error) {
	parts, ok := c.hooks.vk(vk)
	if !ok {
		return nil, fmt.Errorf("%w: verifying key %T is not a %s key", ErrUnsupportedConfiguration, vk, c.id)
	}
	v := &VerifyingKeyView{
		Size:     parts.size,
		NbPublic: parts.nbPublic,
		Ql:       c.group.wrap(parts.ql),
		Qr:       c.group.wrap(parts.qr),
		Qm:       c.group.wrap(parts.qm),
		Qo:       c.group.wrap(parts.qo),
		Qk:       c.group.wrap(parts.qk),
		Qcp:      c.group.wrapAll(parts.qcp),
	}
	for i := 0; i < 3; i++ {
		v.S[i] = c.group.wrap(parts.s[i])
	}
	return v, nil
}
