package lexer

import (
	"fmt"

	"github.com/tickvm/tickvm/sourcemap"
)

// ParsingErrorKind categorizes a lexical failure, spec.md §7.
type ParsingErrorKind int

const (
	InvalidLabel ParsingErrorKind = iota
	InvalidComment
	InvalidRegister
	InvalidArgument
	Unknown
)

func (k ParsingErrorKind) String() string {
	switch k {
	case InvalidLabel:
		return "invalid_label"
	case InvalidComment:
		return "invalid_comment"
	case InvalidRegister:
		return "invalid_register"
	case InvalidArgument:
		return "invalid_argument"
	case Unknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ParsingError is raised by the Lexer. Tokenizing stops at the first one.
type ParsingError struct {
	Message string
	Kind    ParsingErrorKind
	Loc     sourcemap.Location
	Wrapped error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

func (e *ParsingError) Unwrap() error { return e.Wrapped }

func newParsingError(kind ParsingErrorKind, loc sourcemap.Location, format string, args ...any) *ParsingError {
	return &ParsingError{Message: fmt.Sprintf(format, args...), Kind: kind, Loc: loc}
}
