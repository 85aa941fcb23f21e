package ast

import (
	"fmt"

	"github.com/tickvm/tickvm/sourcemap"
)

// CompilationErrorKind categorizes an AST-construction or compiler
// failure, spec.md §7. Shared by package ast and package compiler since
// both stages report into the same taxonomy.
type CompilationErrorKind int

const (
	InvalidOperation CompilationErrorKind = iota
	InvalidArgument
	DuplicateLabel
	UnknownLabel
	UnknownConstant
	TooLargeAssembly
)

func (k CompilationErrorKind) String() string {
	switch k {
	case InvalidOperation:
		return "invalid_operation"
	case InvalidArgument:
		return "invalid_argument"
	case DuplicateLabel:
		return "duplicate_label"
	case UnknownLabel:
		return "unknown_label"
	case UnknownConstant:
		return "unknown_constant"
	case TooLargeAssembly:
		return "too_large_assembly"
	default:
		return "unknown"
	}
}

// CompilationError is raised by AST construction or the compiler.
type CompilationError struct {
	Message string
	Kind    CompilationErrorKind
	Loc     *sourcemap.Location
	Wrapped error
}

func (e *CompilationError) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s: %s", e.Loc, e.Message)
	}
	return e.Message
}

func (e *CompilationError) Unwrap() error { return e.Wrapped }

// NewCompilationError builds a CompilationError; exported so package
// compiler can raise the remaining kinds (InvalidOperation,
// UnknownLabel, UnknownConstant, TooLargeAssembly) without its own type.
func NewCompilationError(kind CompilationErrorKind, loc *sourcemap.Location, format string, args ...any) *CompilationError {
	return &CompilationError{Message: fmt.Sprintf(format, args...), Kind: kind, Loc: loc}
}
