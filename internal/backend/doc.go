// Package backend adapts the gnark-crypto and gnark collaborators to the
// handle layer.
//
// One generic implementation of the field and group operations is written
// against the method sets shared by every gnark-crypto curve package and is
// instantiated once per supported curve in the backend_<curve>.go files.
// Those files also carry the small amount of code that needs the concrete
// per-curve types: KZG SRS construction, SRS truncation and Lagrange
// conversion, and read-only views over gnark PLONK proofs and verifying
// keys.
//
// # Sections
//
//   - field.go, group.go: generic scalar and G1 arithmetic
//   - srs.go: SRS sizing and deterministic setup
//   - circuit.go: gate descriptions compiled to a sparse constraint system
//   - plonk.go: setup, prove and verify
//   - transcript.go: Fiat-Shamir challenge replay
//
// Nothing in this package owns handles. Callers hold the returned values in
// the registry and pass them back in.
package backend
