package index

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/pkg/plonk"
)

// Gate is one arithmetic constraint. Nil coefficients are zero.
type Gate struct {
	Wires  []int      `json:"wires" cbor:"1,keyasint"`
	Coeffs []*big.Int `json:"coeffs" cbor:"2,keyasint"`
	Mul    *big.Int   `json:"mul,omitempty" cbor:"3,keyasint,omitempty"`
	Const  *big.Int   `json:"const,omitempty" cbor:"4,keyasint,omitempty"`
}

// ConstraintSystem is a gate list over NumPublic public and NumSecret secret
// inputs.
type ConstraintSystem struct {
	NumPublic int    `json:"public" cbor:"1,keyasint"`
	NumSecret int    `json:"secret" cbor:"2,keyasint"`
	Gates     []Gate `json:"gates" cbor:"3,keyasint"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		MaxArrayElements: 1 << 24,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// ParseConstraintSystem decodes a JSON description and validates its shape.
func ParseConstraintSystem(data []byte) (ConstraintSystem, error) {
	var cs ConstraintSystem
	if err := json.Unmarshal(data, &cs); err != nil {
		return ConstraintSystem{}, plonk.Errorf("index.ParseConstraintSystem", "%w: %v", plonk.ErrInvalidConstraintSystem, err)
	}
	if err := cs.Validate(); err != nil {
		return ConstraintSystem{}, plonk.Wrap("index.ParseConstraintSystem", err)
	}
	return cs, nil
}

// Validate checks gate arity, coefficient counts and wire bounds.
func (cs ConstraintSystem) Validate() error {
	return cs.system().Validate()
}

// NumInputs returns the witness length the system expects.
func (cs ConstraintSystem) NumInputs() int {
	return cs.NumPublic + cs.NumSecret
}

// MarshalCBOR encodes cs deterministically.
func (cs ConstraintSystem) MarshalCBOR() ([]byte, error) {
	type plain ConstraintSystem
	return encMode.Marshal(plain(cs))
}

// UnmarshalCBOR decodes cs, rejecting unknown fields.
func (cs *ConstraintSystem) UnmarshalCBOR(data []byte) error {
	type plain ConstraintSystem
	var p plain
	if err := decMode.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: constraint system: %v", plonk.ErrMalformedEncoding, err)
	}
	*cs = ConstraintSystem(p)
	return nil
}

func (cs ConstraintSystem) system() backend.System {
	gates := make([]backend.Gate, len(cs.Gates))
	for i, g := range cs.Gates {
		gates[i] = backend.Gate{Wires: g.Wires, Coeffs: g.Coeffs, Mul: g.Mul, Const: g.Const}
	}
	return backend.System{NbPublic: cs.NumPublic, NbSecret: cs.NumSecret, Gates: gates}
}

func (cs ConstraintSystem) clone() ConstraintSystem {
	out := ConstraintSystem{NumPublic: cs.NumPublic, NumSecret: cs.NumSecret, Gates: make([]Gate, len(cs.Gates))}
	cp := func(v *big.Int) *big.Int {
		if v == nil {
			return nil
		}
		return new(big.Int).Set(v)
	}
	for i, g := range cs.Gates {
		ng := Gate{Wires: append([]int(nil), g.Wires...), Mul: cp(g.Mul), Const: cp(g.Const)}
		ng.Coeffs = make([]*big.Int, len(g.Coeffs))
		for j, c := range g.Coeffs {
			ng.Coeffs[j] = cp(c)
		}
		out.Gates[i] = ng
	}
	return out
}
