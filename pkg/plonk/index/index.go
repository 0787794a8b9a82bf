package index

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	gnarkplonk "github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/codec"
	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
	"github.com/marlinplonk/plonk-go/pkg/plonk/curve"
	"github.com/marlinplonk/plonk-go/pkg/plonk/logging"
	"github.com/marlinplonk/plonk-go/pkg/plonk/urs"
)

// Section tags of encoded indices. Tag 2 once held the compiled constraint
// system and is not reused.
const (
	sectionDescription uint32 = 1
	sectionProvingKey  uint32 = 3
	sectionVerifyKey   uint32 = 4
	sectionInfo        uint32 = 5
)

// Info summarizes an index.
type Info struct {
	Curve          curve.Curve `json:"curve" cbor:"1,keyasint"`
	DomainSize     int         `json:"domain_size" cbor:"2,keyasint"`
	NumPublic      int         `json:"public_inputs" cbor:"3,keyasint"`
	NumSecret      int         `json:"secret_inputs" cbor:"4,keyasint"`
	NumGates       int         `json:"gates" cbor:"5,keyasint"`
	NumConstraints int         `json:"constraints" cbor:"6,keyasint"`
}

// Artifacts are the collaborator objects behind a proving index. They are
// shared and must not be modified.
// This is exported for use by the object subpackages.
type Artifacts struct {
	System       backend.System
	CCS          constraint.ConstraintSystem
	ProvingKey   gnarkplonk.ProvingKey
	VerifyingKey gnarkplonk.VerifyingKey
}

type provingPayload struct {
	desc      ConstraintSystem
	art       Artifacts
	info      Info
	pointSize int64
}

func (p *provingPayload) SizeBytes() int64 {
	// canonical and Lagrange SRS copies dominate
	return int64(2*p.info.DomainSize+3) * p.pointSize
}

type verifyingPayload struct {
	vk        gnarkplonk.VerifyingKey
	info      Info
	pointSize int64
}

func (p *verifyingPayload) SizeBytes() int64 {
	return 16 * p.pointSize
}

// ProvingIndex is a handle to a compiled constraint system together with its
// PLONK proving key.
type ProvingIndex struct {
	owned registry.Owned
	curve curve.Curve
}

// VerifyingIndex is a handle to a PLONK verifying key.
type VerifyingIndex struct {
	owned registry.Owned
	curve curve.Curve
}

func newProving(c curve.Curve, p *provingPayload) (*ProvingIndex, error) {
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindProvingIndex, c.Tag(), p)
	if err != nil {
		return nil, err
	}
	pi := &ProvingIndex{curve: c}
	pi.owned.Init(reg, h)
	runtime.SetFinalizer(pi, (*ProvingIndex).Free)
	return pi, nil
}

func newVerifying(c curve.Curve, p *verifyingPayload) (*VerifyingIndex, error) {
	reg := registry.Default()
	h, err := reg.Allocate(registry.KindVerifyingIndex, c.Tag(), p)
	if err != nil {
		return nil, err
	}
	vi := &VerifyingIndex{curve: c}
	vi.owned.Init(reg, h)
	runtime.SetFinalizer(vi, (*VerifyingIndex).Free)
	return vi, nil
}

func infoFor(c curve.Curve, cs ConstraintSystem, ccs constraint.ConstraintSystem) Info {
	return Info{
		Curve:          c,
		DomainSize:     backend.SystemDomain(ccs),
		NumPublic:      cs.NumPublic,
		NumSecret:      cs.NumSecret,
		NumGates:       len(cs.Gates),
		NumConstraints: ccs.GetNbConstraints(),
	}
}

// Build compiles cs and derives a proving index from u. The URS must hold at
// least the evaluation domain size plus three points; u may be freed once
// Build returns.
func Build(ctx context.Context, u *urs.URS, cs ConstraintSystem) (*ProvingIndex, error) {
	const op = "index.Build"
	if err := ctx.Err(); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	c := u.Curve()
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	desc := cs.clone()
	sys := desc.system()
	start := time.Now()
	ccs, err := backend.Compile(c.ID(), sys)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	srs, err := u.SRS()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	keys, err := backend.Setup(b, ccs, srs)
	runtime.KeepAlive(u)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	p := &provingPayload{
		desc:      desc,
		art:       Artifacts{System: sys, CCS: ccs, ProvingKey: keys.ProvingKey, VerifyingKey: keys.VerifyingKey},
		info:      infoFor(c, desc, ccs),
		pointSize: backend.PointSize(c.ID()),
	}
	pi, err := newProving(c, p)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	plonk.Logger().Info(ctx, "index built",
		logging.Curve(c), logging.Kind(registry.KindProvingIndex), logging.Handle(pi.owned.Handle().ID()),
		"domain", p.info.DomainSize, "gates", p.info.NumGates,
		"constraints", p.info.NumConstraints, "duration", time.Since(start))
	return pi, nil
}

// Curve returns the configuration of pi.
func (pi *ProvingIndex) Curve() curve.Curve {
	if pi == nil {
		return curve.Unknown
	}
	return pi.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (pi *ProvingIndex) Free() {
	if pi == nil {
		return
	}
	pi.owned.Free()
	runtime.SetFinalizer(pi, nil)
}

func (pi *ProvingIndex) payload(op string) (*provingPayload, error) {
	if pi == nil {
		return nil, plonk.Errorf(op, "%w: nil proving index", plonk.ErrInvalidHandle)
	}
	var out *provingPayload
	err := registry.With(&pi.owned, registry.KindProvingIndex, func(p *provingPayload) error {
		out = p
		return nil
	})
	runtime.KeepAlive(pi)
	return out, plonk.Wrap(op, err)
}

// Info returns the shape of pi.
func (pi *ProvingIndex) Info() (Info, error) {
	p, err := pi.payload("ProvingIndex.Info")
	if err != nil {
		return Info{}, err
	}
	return p.info, nil
}

// DomainSize returns the size of the evaluation domain.
func (pi *ProvingIndex) DomainSize() (int, error) {
	info, err := pi.Info()
	return info.DomainSize, err
}

// NumPublicInputs returns the number of public witness positions.
func (pi *ProvingIndex) NumPublicInputs() (int, error) {
	info, err := pi.Info()
	return info.NumPublic, err
}

// NumGates returns the number of gates in the description pi was built from.
func (pi *ProvingIndex) NumGates() (int, error) {
	info, err := pi.Info()
	return info.NumGates, err
}

// ConstraintSystem returns a copy of the description pi was built from.
func (pi *ProvingIndex) ConstraintSystem() (ConstraintSystem, error) {
	p, err := pi.payload("ProvingIndex.ConstraintSystem")
	if err != nil {
		return ConstraintSystem{}, err
	}
	return p.desc.clone(), nil
}

// Artifacts returns the collaborator objects behind pi.
// This is exported for use by the object subpackages.
func (pi *ProvingIndex) Artifacts() (Artifacts, error) {
	p, err := pi.payload("ProvingIndex.Artifacts")
	if err != nil {
		return Artifacts{}, err
	}
	return p.art, nil
}

// VerifyingIndex derives an independent verifying index. It stays valid
// after pi is freed.
func (pi *ProvingIndex) VerifyingIndex() (*VerifyingIndex, error) {
	const op = "ProvingIndex.VerifyingIndex"
	p, err := pi.payload(op)
	if err != nil {
		return nil, err
	}
	vi, err := newVerifying(pi.curve, &verifyingPayload{
		vk:        p.art.VerifyingKey,
		info:      p.info,
		pointSize: p.pointSize,
	})
	return vi, plonk.Wrap(op, err)
}

// Encode serializes pi.
func (pi *ProvingIndex) Encode() ([]byte, error) {
	const op = "ProvingIndex.Encode"
	p, err := pi.payload(op)
	if err != nil {
		return nil, err
	}
	desc, err := p.desc.MarshalCBOR()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	secs := []codec.Section{{Tag: sectionDescription, Data: desc}}
	for _, part := range []struct {
		tag uint32
		obj io.WriterTo
	}{
		{sectionProvingKey, p.art.ProvingKey},
		{sectionVerifyKey, p.art.VerifyingKey},
	} {
		sec, err := codec.Capture(part.tag, part.obj)
		if err != nil {
			return nil, plonk.Wrap(op, err)
		}
		secs = append(secs, sec)
	}
	return codec.Encode(codec.Frame{
		Curve:    pi.curve.Tag(),
		Kind:     uint32(registry.KindProvingIndex),
		Sections: secs,
	}), nil
}

// restore decodes section tag of f into dst once b has checked it has the
// layout of shape.
func restore(f *codec.Frame, b backend.Backend, shape backend.Shape, tag uint32, dst io.ReaderFrom) error {
	return f.RestoreSection(tag, func(raw []byte) error { return b.Scan(shape, raw) }, dst)
}

// checkKey rejects a verifying key that disagrees with the recorded shape.
func checkKey(c curve.Curve, vk gnarkplonk.VerifyingKey, info Info) error {
	b, err := c.Backend()
	if err != nil {
		return err
	}
	view, err := b.VerifyingKeyView(vk)
	if err != nil {
		return fmt.Errorf("%w: %v", plonk.ErrMalformedEncoding, err)
	}
	if int(view.NbPublic) != info.NumPublic || int(view.Size) != info.DomainSize {
		return fmt.Errorf("%w: verifying key for %d public inputs over domain %d, index records %d over %d",
			plonk.ErrMalformedEncoding, view.NbPublic, view.Size, info.NumPublic, info.DomainSize)
	}
	return nil
}

// DecodeProvingIndex parses a proving index encoded for configuration c.
// The constraint system is recompiled from the stored description rather
// than decoded.
func DecodeProvingIndex(c curve.Curve, data []byte) (*ProvingIndex, error) {
	const op = "index.DecodeProvingIndex"
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	f, err := codec.Decode(data, c.Tag(), uint32(registry.KindProvingIndex))
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	raw, err := f.Section(sectionDescription)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	var desc ConstraintSystem
	if err := desc.UnmarshalCBOR(raw); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if err := desc.Validate(); err != nil {
		return nil, plonk.Errorf(op, "%w: %v", plonk.ErrMalformedEncoding, err)
	}
	id := c.ID()
	art := Artifacts{
		System:       desc.system(),
		ProvingKey:   backend.NewProvingKey(id),
		VerifyingKey: backend.NewVerifyingKey(id),
	}
	if err := restore(f, b, backend.ShapeProvingKey, sectionProvingKey, art.ProvingKey); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if err := restore(f, b, backend.ShapeVerifyingKey, sectionVerifyKey, art.VerifyingKey); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if art.CCS, err = backend.Compile(id, art.System); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	info := infoFor(c, desc, art.CCS)
	if err := checkKey(c, art.VerifyingKey, info); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	pi, err := newProving(c, &provingPayload{desc: desc, art: art, info: info, pointSize: backend.PointSize(id)})
	return pi, plonk.Wrap(op, err)
}

// WriteFile stores the encoding of pi at path.
func (pi *ProvingIndex) WriteFile(path string) error {
	data, err := pi.Encode()
	if err != nil {
		return err
	}
	return plonk.Wrap("ProvingIndex.WriteFile", writeFile(path, data))
}

// ReadProvingIndex loads a proving index for configuration c from path.
func ReadProvingIndex(c curve.Curve, path string) (*ProvingIndex, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, plonk.Wrap("index.ReadProvingIndex", err)
	}
	return DecodeProvingIndex(c, data)
}

// Curve returns the configuration of vi.
func (vi *VerifyingIndex) Curve() curve.Curve {
	if vi == nil {
		return curve.Unknown
	}
	return vi.curve
}

// Free reclaims the handle. It is called automatically by the garbage
// collector via finalizer and is safe to call more than once.
func (vi *VerifyingIndex) Free() {
	if vi == nil {
		return
	}
	vi.owned.Free()
	runtime.SetFinalizer(vi, nil)
}

func (vi *VerifyingIndex) payload(op string) (*verifyingPayload, error) {
	if vi == nil {
		return nil, plonk.Errorf(op, "%w: nil verifying index", plonk.ErrInvalidHandle)
	}
	var out *verifyingPayload
	err := registry.With(&vi.owned, registry.KindVerifyingIndex, func(p *verifyingPayload) error {
		out = p
		return nil
	})
	runtime.KeepAlive(vi)
	return out, plonk.Wrap(op, err)
}

// Info returns the shape of the index vi was derived from.
func (vi *VerifyingIndex) Info() (Info, error) {
	p, err := vi.payload("VerifyingIndex.Info")
	if err != nil {
		return Info{}, err
	}
	return p.info, nil
}

// DomainSize returns the size of the evaluation domain.
func (vi *VerifyingIndex) DomainSize() (int, error) {
	info, err := vi.Info()
	return info.DomainSize, err
}

// NumPublicInputs returns the number of public inputs a proof is checked
// against.
func (vi *VerifyingIndex) NumPublicInputs() (int, error) {
	info, err := vi.Info()
	return info.NumPublic, err
}

// NumGates returns the number of gates of the originating description.
func (vi *VerifyingIndex) NumGates() (int, error) {
	info, err := vi.Info()
	return info.NumGates, err
}

// VerifyingKey returns the collaborator key behind vi. It is shared and must
// not be modified.
// This is exported for use by the object subpackages.
func (vi *VerifyingIndex) VerifyingKey() (gnarkplonk.VerifyingKey, error) {
	p, err := vi.payload("VerifyingIndex.VerifyingKey")
	if err != nil {
		return nil, err
	}
	return p.vk, nil
}

// Encode serializes vi.
func (vi *VerifyingIndex) Encode() ([]byte, error) {
	const op = "VerifyingIndex.Encode"
	p, err := vi.payload(op)
	if err != nil {
		return nil, err
	}
	info, err := encMode.Marshal(p.info)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	vk, err := codec.Capture(sectionVerifyKey, p.vk)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	return codec.Encode(codec.Frame{
		Curve:    vi.curve.Tag(),
		Kind:     uint32(registry.KindVerifyingIndex),
		Sections: []codec.Section{{Tag: sectionInfo, Data: info}, vk},
	}), nil
}

// DecodeVerifyingIndex parses a verifying index encoded for configuration c.
func DecodeVerifyingIndex(c curve.Curve, data []byte) (*VerifyingIndex, error) {
	const op = "index.DecodeVerifyingIndex"
	b, err := c.Backend()
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	f, err := codec.Decode(data, c.Tag(), uint32(registry.KindVerifyingIndex))
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	raw, err := f.Section(sectionInfo)
	if err != nil {
		return nil, plonk.Wrap(op, err)
	}
	var info Info
	if err := decMode.Unmarshal(raw, &info); err != nil {
		return nil, plonk.Errorf(op, "%w: info: %v", plonk.ErrMalformedEncoding, err)
	}
	if info.Curve != c {
		return nil, plonk.Errorf(op, "%w: info names %s", plonk.ErrMalformedEncoding, info.Curve)
	}
	vk := backend.NewVerifyingKey(c.ID())
	if err := restore(f, b, backend.ShapeVerifyingKey, sectionVerifyKey, vk); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	if err := checkKey(c, vk, info); err != nil {
		return nil, plonk.Wrap(op, err)
	}
	vi, err := newVerifying(c, &verifyingPayload{vk: vk, info: info, pointSize: backend.PointSize(c.ID())})
	return vi, plonk.Wrap(op, err)
}

// WriteFile stores the encoding of vi at path.
func (vi *VerifyingIndex) WriteFile(path string) error {
	data, err := vi.Encode()
	if err != nil {
		return err
	}
	return plonk.Wrap("VerifyingIndex.WriteFile", writeFile(path, data))
}

// ReadVerifyingIndex loads a verifying index for configuration c from path.
func ReadVerifyingIndex(c curve.Curve, path string) (*VerifyingIndex, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, plonk.Wrap("index.ReadVerifyingIndex", err)
	}
	return DecodeVerifyingIndex(c, data)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path) // #nosec G304 -- caller chooses the artifact path
}
