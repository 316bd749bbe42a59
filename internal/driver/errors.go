package driver

import (
	"errors"
	"fmt"

	"github.com/alexbaden/triton/internal/accel"
)

var (
	// ErrUnsupportedType is matched by every error returned from a type
	// mapping for a token outside the backend's vocabulary.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMissingRuntime is returned when a driver is built for a runtime that
	// is not linked into the binary.
	ErrMissingRuntime = accel.ErrMissingRuntime

	ErrUnknownBackend  = errors.New("unknown backend")
	ErrInactiveBackend = errors.New("backend is not active")

	ErrInvalidQuantile   = errors.New("quantile out of [0,1]")
	ErrInvalidReturnMode = errors.New("invalid return mode")
)

// UnsupportedTypeError reports a type string a backend cannot map.
type UnsupportedTypeError struct {
	Backend string
	Type    TypeString
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported type %q", e.Backend, string(e.Type))
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}
