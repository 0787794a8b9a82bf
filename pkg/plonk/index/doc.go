// Package index derives PLONK proving and verifying indices from a URS and a
// gate-level constraint description.
//
// # Constraint descriptions
//
// A ConstraintSystem lists gates over a witness whose first NumPublic
// positions are public inputs and whose remaining NumSecret positions are
// secret. Each gate asserts
//
//	Σ coeffs[i]·w[wires[i]] + mul·w[wires[0]]·w[wires[1]] + const = 0
//
// Gates have three wires, mapping directly to the PLONK gate
// qL·a + qR·b + qO·c + qM·a·b + qC = 0, or five wires, which are lowered to
// several three-wire constraints at compile time. Descriptions are read from
// JSON by the command line tool and stored as CBOR inside encoded indices.
//
// # Indices
//
// Build compiles a description, fits the URS to the evaluation domain and
// runs the PLONK setup. The resulting ProvingIndex carries the verifying
// key, from which VerifyingIndex derives an independent handle. Both
// indices are immutable and may be used concurrently.
package index
