// Package urs manages universal reference strings, the KZG structured
// reference strings every index of a curve configuration is derived from.
//
// A URS is immutable once created. Truncate returns a new handle over a
// prefix; indices built from a URS keep their own copy of what they need, so
// freeing the URS afterwards does not affect them.
//
// # Persistence
//
// Encode and Decode use the framed binary format of the library: a header
// naming the format version, the curve configuration and the object kind,
// one section holding the gnark-crypto encoding of the SRS, and a BLAKE3
// digest over the whole frame. Decode checks the point count the section
// declares against its length before gnark allocates anything. WriteFile and
// ReadFile store the same bytes at the path the caller names.
//
// # Randomness
//
// Generate samples the setup secret from crypto/rand and discards it.
// Deterministic expands a caller-provided seed instead; the resulting URS is
// reproducible and therefore offers no soundness. It exists for tests and
// fixtures.
package urs
