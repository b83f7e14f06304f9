package effect

import (
	"errors"
	"fmt"
)

var (
	// ErrReconfigure is returned by Configure when the new options cannot
	// be applied in place; the caller must replace the effect.
	ErrReconfigure = errors.New("effect: reconfigure requires replacement")

	// ErrDestroyed is returned by operations on a destroyed effect. A fade
	// request failing with it counts as an already-complete fade.
	ErrDestroyed = errors.New("effect: destroyed")

	// ErrUnknownType is wrapped by UnknownTypeError.
	ErrUnknownType = errors.New("effect: unknown type")
)

// UnknownTypeError reports a descriptor whose type has no factory.
type UnknownTypeError struct {
	ID   string
	Kind Kind
	Type Type
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("effect: unknown %s type %q for id %q", e.Kind, e.Type, e.ID)
}

// Unwrap returns ErrUnknownType.
func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }
