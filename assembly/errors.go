package assembly

import (
	"fmt"

	"github.com/tickvm/tickvm/sourcemap"
)

// AssemblyErrorKind categorizes a validation failure, spec.md §7.
type AssemblyErrorKind int

const (
	InvalidInstruction AssemblyErrorKind = iota
	InvalidRegister
	InvalidPin
	TooLarge
)

func (k AssemblyErrorKind) String() string {
	switch k {
	case InvalidInstruction:
		return "invalid_instruction"
	case InvalidRegister:
		return "invalid_register"
	case InvalidPin:
		return "invalid_pin"
	case TooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// AssemblyError is raised by the Assembly Validator at load time. It
// carries a human message, a machine-checkable Kind, and an optional
// source Location, grounded on encoder.EncodingError's message+location
// shape (encoder/errors.go).
type AssemblyError struct {
	Message string               `json:"message"`
	Kind    AssemblyErrorKind    `json:"kind"`
	Loc     *sourcemap.Location  `json:"location,omitempty"`
	Wrapped error                `json:"-"`
}

func (e *AssemblyError) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s: %s", e.Loc, e.Message)
	}
	return e.Message
}

func (e *AssemblyError) Unwrap() error { return e.Wrapped }

func newAssemblyError(kind AssemblyErrorKind, loc *sourcemap.Location, format string, args ...any) *AssemblyError {
	return &AssemblyError{Message: fmt.Sprintf(format, args...), Kind: kind, Loc: loc}
}
