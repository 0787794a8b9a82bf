package backend

import (
	"fmt"
	"math"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
)

// Gate asserts
//
//	Σ Coeffs[i]·w[Wires[i]] + Mul·w[Wires[0]]·w[Wires[1]] + Const = 0
//
// over the witness w. Public inputs occupy the first witness positions,
// secret inputs follow. A gate has either three or five wires; five-wire
// gates are lowered to several three-wire constraints when compiled. Nil
// coefficients are zero.
type Gate struct {
	Wires  []int
	Coeffs []*big.Int
	Mul    *big.Int
	Const  *big.Int
}

// System is a gate list over a fixed number of public and secret inputs.
type System struct {
	NbPublic int
	NbSecret int
	Gates    []Gate
}

// Validate checks the shape of s without compiling it.
func (s System) Validate() error {
	if s.NbPublic < 0 || s.NbSecret < 0 {
		return fmt.Errorf("%w: negative input count", ErrInvalidConstraintSystem)
	}
	if s.NbPublic+s.NbSecret == 0 {
		return fmt.Errorf("%w: no inputs", ErrInvalidConstraintSystem)
	}
	if len(s.Gates) == 0 {
		return fmt.Errorf("%w: no gates", ErrInvalidConstraintSystem)
	}
	nbWires := s.NbPublic + s.NbSecret
	for i, g := range s.Gates {
		if len(g.Wires) != 3 && len(g.Wires) != 5 {
			return fmt.Errorf("%w: gate %d has %d wires", ErrInvalidConstraintSystem, i, len(g.Wires))
		}
		if len(g.Coeffs) != len(g.Wires) {
			return fmt.Errorf("%w: gate %d has %d coefficients for %d wires", ErrInvalidConstraintSystem, i, len(g.Coeffs), len(g.Wires))
		}
		for _, w := range g.Wires {
			if w < 0 || w >= nbWires {
				return fmt.Errorf("%w: gate %d references wire %d of %d", ErrInvalidConstraintSystem, i, w, nbWires)
			}
		}
	}
	return nil
}

type gateCircuit struct {
	Public []frontend.Variable `gnark:",public"`
	Secret []frontend.Variable
	Gates  []Gate   `gnark:"-"`
	Field  *big.Int `gnark:"-"`
}

func (c *gateCircuit) wire(i int) frontend.Variable {
	if i < len(c.Public) {
		return c.Public[i]
	}
	return c.Secret[i-len(c.Public)]
}

func (c *gateCircuit) Define(api frontend.API) error {
	papi, native := api.(frontend.PlonkAPI)
	for _, g := range c.Gates {
		if native && len(g.Wires) == 3 {
			if q, ok := c.smallCoeffs(g); ok {
				papi.AddPlonkConstraint(c.wire(g.Wires[0]), c.wire(g.Wires[1]), c.wire(g.Wires[2]),
					q[0], q[1], q[2], q[3], q[4])
				continue
			}
		}
		var acc frontend.Variable = coeff(g.Const)
		for i, w := range g.Wires {
			acc = api.Add(acc, api.Mul(coeff(g.Coeffs[i]), c.wire(w)))
		}
		acc = api.Add(acc, api.Mul(coeff(g.Mul), c.wire(g.Wires[0]), c.wire(g.Wires[1])))
		api.AssertIsEqual(acc, 0)
	}
	return nil
}

// smallCoeffs returns qL, qR, qO, qM, qC when all fit a machine int, reading
// residues close to the modulus as negative numbers.
func (c *gateCircuit) smallCoeffs(g Gate) ([5]int, bool) {
	var q [5]int
	vals := [5]*big.Int{g.Coeffs[0], g.Coeffs[1], g.Coeffs[2], g.Mul, g.Const}
	for i, v := range vals {
		n, ok := c.small(v)
		if !ok {
			return q, false
		}
		q[i] = n
	}
	return q, true
}

func (c *gateCircuit) small(v *big.Int) (int, bool) {
	if v == nil {
		return 0, true
	}
	r := new(big.Int).Mod(v, c.Field)
	if r.IsInt64() && r.Int64() <= math.MaxInt32 {
		return int(r.Int64()), true
	}
	r.Sub(c.Field, r)
	if r.IsInt64() && r.Int64() <= math.MaxInt32 {
		return -int(r.Int64()), true
	}
	return 0, false
}

func coeff(v *big.Int) frontend.Variable {
	if v == nil {
		return 0
	}
	return new(big.Int).Set(v)
}

func (s System) circuit(id ecc.ID) *gateCircuit {
	return &gateCircuit{
		Public: make([]frontend.Variable, s.NbPublic),
		Secret: make([]frontend.Variable, s.NbSecret),
		Gates:  s.Gates,
		Field:  id.ScalarField(),
	}
}

// Compile lowers s to a sparse PLONK constraint system over id.
func Compile(id ecc.ID, s System) (constraint.ConstraintSystem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	ccs, err := frontend.Compile(id.ScalarField(), scs.NewBuilder, s.circuit(id), frontend.IgnoreUnconstrainedInputs())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstraintSystem, err)
	}
	return ccs, nil
}

// Witness assigns public followed by secret values. With publicOnly the
// secret values are ignored and may be nil.
func (s System) Witness(id ecc.ID, public, secret []*big.Int, publicOnly bool) (witness.Witness, error) {
	if len(public) != s.NbPublic {
		return nil, fmt.Errorf("backend: %d public values for %d public inputs", len(public), s.NbPublic)
	}
	c := s.circuit(id)
	for i, v := range public {
		c.Public[i] = new(big.Int).Set(v)
	}
	var opts []frontend.WitnessOption
	if publicOnly {
		for i := range c.Secret {
			c.Secret[i] = 0
		}
		opts = append(opts, frontend.PublicOnly())
	} else {
		if len(secret) != s.NbSecret {
			return nil, fmt.Errorf("backend: %d secret values for %d secret inputs", len(secret), s.NbSecret)
		}
		for i, v := range secret {
			c.Secret[i] = new(big.Int).Set(v)
		}
	}
	return frontend.NewWitness(c, id.ScalarField(), opts...)
}
