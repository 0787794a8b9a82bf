// Package plonk is the root of plonk-go, an opaque-handle layer over the
// gnark PLONK prover and the gnark-crypto curve library.
//
// Native objects (field elements, curve points, reference strings, proving
// and verifying indices, proofs, oracle results) live in a process-wide
// handle registry. Callers only ever hold typed wrappers from the
// subpackages:
//
//   - curve: curve configurations, scalars and G1 points
//   - vector: scalar vectors used as witnesses and public inputs
//   - urs: KZG universal reference strings
//   - index: constraint descriptions, proving and verifying indices
//   - proof: proof generation and persistence
//   - oracle: Fiat-Shamir challenge replay and verification
//
// Every wrapper reclaims its handle when it becomes unreachable, or earlier
// through an explicit Free. Operations on a freed wrapper fail with
// ErrInvalidHandle.
//
// This package holds what the subpackages share: the error taxonomy,
// configuration, the active logger and registry statistics. Open installs a
// Config for the process; using the subpackages without Open works with an
// unbounded registry and a discarding logger.
package plonk
