// Package oracle replays the PLONK verifier over a verifying index, a proof
// and public inputs.
//
// Compute derives the Fiat-Shamir challenges gamma, beta, alpha and zeta in
// the order the verifier does, digests the public inputs and checks the
// verification equation. Those four round challenges are what a Result
// exposes; the folding challenge of the KZG batch opening stays inside the
// pairing check. A proof that does not verify is a normal outcome:
// the Result reports Accepted false and an Err wrapping
// plonk.ErrVerificationFailed. Structural problems such as mixed curve
// configurations, a public input count that does not match the index, or a
// reclaimed handle are returned as errors instead.
//
// ComputeBatch runs several computations with bounded concurrency.
package oracle
