package plonk

import (
	"errors"
	"fmt"
	"io"

	"github.com/marlinplonk/plonk-go/internal/backend"
	"github.com/marlinplonk/plonk-go/internal/codec"
	"github.com/marlinplonk/plonk-go/internal/registry"
)

var (
	// ErrInvalidHandle indicates a handle that was reclaimed, never issued or
	// refers to a different kind of object.
	ErrInvalidHandle = registry.ErrInvalidHandle

	// ErrOutOfMemory indicates the configured memory budget is exhausted.
	ErrOutOfMemory = registry.ErrOutOfMemory

	// ErrConfigurationMismatch indicates objects or artifacts of different
	// curve configurations were combined.
	ErrConfigurationMismatch = codec.ErrConfigurationMismatch

	// ErrFormatVersionMismatch indicates an artifact written by an
	// incompatible format version.
	ErrFormatVersionMismatch = codec.ErrFormatVersionMismatch

	// ErrMalformedEncoding indicates truncated or corrupted bytes.
	ErrMalformedEncoding = codec.ErrMalformedEncoding

	// ErrVerificationFailed indicates a proof the verifier rejected. It is
	// carried in an oracle result rather than returned.
	ErrVerificationFailed = backend.ErrVerificationFailed

	// ErrUnsupportedConfiguration indicates a curve the library does not
	// provide.
	ErrUnsupportedConfiguration = backend.ErrUnsupportedConfiguration

	// ErrURSTooSmall indicates a URS shorter than the operation needs.
	ErrURSTooSmall = backend.ErrURSTooSmall

	// ErrUnsatisfiedWitness indicates a witness that violates the constraint
	// system.
	ErrUnsatisfiedWitness = backend.ErrUnsatisfiedWitness

	// ErrInvalidConstraintSystem indicates a gate description that cannot be
	// compiled.
	ErrInvalidConstraintSystem = backend.ErrInvalidConstraintSystem

	// ErrDivisionByZero indicates an inversion of zero.
	ErrDivisionByZero = backend.ErrDivisionByZero

	// ErrIndexOutOfRange indicates a vector position past the end.
	ErrIndexOutOfRange = errors.New("plonk: index out of range")

	// ErrFrozen indicates a write to a vector that has been consumed.
	ErrFrozen = errors.New("plonk: vector is frozen")

	// ErrLibraryClosed indicates a second Close on a Library.
	ErrLibraryClosed = errors.New("plonk: library closed")
)

// Error wraps an underlying error with the name of the failing operation.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("plonk.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RemapError converts collaborator errors to the public taxonomy. Element
// encoding errors and short reads surface as ErrMalformedEncoding.
// This is exported for use by the object subpackages.
func RemapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrMalformedEncoding):
		return err
	case errors.Is(err, backend.ErrInvalidEncoding),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return fmt.Errorf("%w: %w", ErrMalformedEncoding, err)
	}
	return err
}

// Wrap returns nil for a nil err and otherwise an *Error for op carrying the
// remapped err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok && e.Op == op {
		return err
	}
	return &Error{Op: op, Err: RemapError(err)}
}

// Errorf builds an *Error for op from a format string.
func Errorf(op string, format string, args ...any) error {
	return &Error{Op: op, Err: fmt.Errorf(format, args...)}
}
