// Package curve provides curve configurations, scalar field elements and G1
// points.
//
// # Supported Curves
//
//   - BN254
//   - BLS12_381
//   - BLS12_377 and BW6_761 (two-chain)
//   - BLS24_315 and BW6_633 (two-chain)
//
// # Memory Management
//
// Scalars and points are handles into the plonk registry. A finalizer frees
// them when they become unreachable; callers that create many values in a
// loop should free them explicitly:
//
//	s, err := curve.RandomScalar(curve.BN254)
//	if err != nil {
//	    return err
//	}
//	defer s.Free()
//
// Using a freed value fails with plonk.ErrInvalidHandle. Combining values of
// different configurations fails with plonk.ErrConfigurationMismatch.
//
// # Common Operations
//
//	x, _ := curve.NewScalarFromUint64(curve.BN254, 3)
//	y, _ := x.Square()
//	p, _ := curve.MulGenerator(y) // 9·G
package curve
