// Package proof produces and persists PLONK proofs.
//
// Prove takes a proving index and a witness vector laid out as public
// inputs followed by secret inputs. The witness length is checked against
// the index before anything else happens; only a witness of the right shape
// is consumed, which freezes it.
//
// A Proof exposes its claimed evaluations and commitments for inspection.
// Verification lives in the oracle package, which replays the Fiat-Shamir
// transcript before checking the pairing.
//
// Encode and Decode use the framed binary format shared with the urs and
// index packages. Decode checks every length the proof declares against the
// bytes actually present before the gnark decoder runs.
package proof
