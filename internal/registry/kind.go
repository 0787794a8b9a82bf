package registry

import "fmt"

// Kind tags the type of payload stored behind a handle.
type Kind uint32

// Kinds of native objects. The numeric values are part of the persisted
// artifact format and must not be renumbered.
const (
	KindUnknown Kind = iota
	KindScalar
	KindPoint
	KindVector
	KindURS
	KindProvingIndex
	KindVerifyingIndex
	KindProof
	KindOracleResult
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPoint:
		return "point"
	case KindVector:
		return "vector"
	case KindURS:
		return "urs"
	case KindProvingIndex:
		return "proving-index"
	case KindVerifyingIndex:
		return "verifying-index"
	case KindProof:
		return "proof"
	case KindOracleResult:
		return "oracle-result"
	default:
		return "unknown"
	}
}

// Handle is an opaque, type-tagged reference to a registry entry. The zero
// Handle never refers to a live object.
type Handle struct {
	id    uint64
	kind  Kind
	curve uint32
}

// ID returns the registry-unique identifier of the handle.
func (h Handle) ID() uint64 { return h.id }

// Kind returns the kind tag the handle was allocated with.
func (h Handle) Kind() Kind { return h.kind }

// Curve returns the curve configuration tag the handle was allocated with.
func (h Handle) Curve() uint32 { return h.curve }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.id == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.kind, h.id)
}

// Ref names a handle together with the kind the caller expects it to have.
type Ref struct {
	Handle Handle
	Kind   Kind
}
