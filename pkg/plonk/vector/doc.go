// Package vector provides scalar vectors, the container used for witnesses,
// public inputs and proof evaluations.
//
// A vector is mutable while it is being built: Set and Append change it in
// place. Handing a vector to an index or proof operation freezes it, as does
// an explicit Freeze; later writes fail with plonk.ErrFrozen. Slice and
// Concat always copy, so derived vectors never alias their sources.
package vector
