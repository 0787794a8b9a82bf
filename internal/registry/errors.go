package registry

import "errors"

var (
	// ErrInvalidHandle reports a handle that was reclaimed, never issued, or
	// does not carry the expected kind tag.
	ErrInvalidHandle = errors.New("registry: invalid handle")

	// ErrOutOfMemory reports that an allocation would exceed the configured
	// memory budget.
	ErrOutOfMemory = errors.New("registry: out of memory")

	// ErrNilPayload reports an attempt to register a nil payload.
	ErrNilPayload = errors.New("registry: nil payload")
)
