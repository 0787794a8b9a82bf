// Package internalcheck holds source-level policy tests for plonk-go.
//
// The tests load the library packages with golang.org/x/tools/go/packages
// and inspect their syntax trees. They check that digests and encodings are
// not compared with ==, that nothing formats values as hex, and that every
// handle wrapper releases its handle from a finalizer.
//
// # Internal Use Only
//
// This package contains no API. Use pkg/plonk and its subpackages instead.
package internalcheck
