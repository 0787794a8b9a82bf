package backend

import "errors"

var (
	// ErrUnsupportedConfiguration reports a curve without a registered backend.
	ErrUnsupportedConfiguration = errors.New("backend: unsupported curve configuration")

	// ErrURSTooSmall reports an SRS too short for the requested operation.
	ErrURSTooSmall = errors.New("backend: urs too small")

	// ErrUnsatisfiedWitness reports a witness that does not satisfy the
	// constraint system.
	ErrUnsatisfiedWitness = errors.New("backend: witness does not satisfy the constraint system")

	// ErrInvalidConstraintSystem reports a gate description that cannot be
	// compiled.
	ErrInvalidConstraintSystem = errors.New("backend: invalid constraint system")

	// ErrVerificationFailed reports a proof rejected by the verifier.
	ErrVerificationFailed = errors.New("backend: verification failed")

	// ErrDivisionByZero reports an inversion of the zero element.
	ErrDivisionByZero = errors.New("backend: division by zero")

	// ErrInvalidEncoding reports bytes that are not a canonical field or
	// group element encoding.
	ErrInvalidEncoding = errors.New("backend: invalid element encoding")
)
