// Package lexer turns tickvm assembly source text into a flat, ordered
// token stream, grounded on parser/lexer.go's character-at-a-time design.
package lexer

import (
	"fmt"

	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/sourcemap"
)

// TokenType is one of the four productions spec.md §4.1 describes.
type TokenType int

const (
	TokenComment TokenType = iota
	TokenLabel
	TokenOperation
	TokenArgument
)

func (t TokenType) String() string {
	switch t {
	case TokenComment:
		return "comment"
	case TokenLabel:
		return "label"
	case TokenOperation:
		return "operation"
	case TokenArgument:
		return "argument"
	default:
		return "unknown"
	}
}

// ArgumentKind narrows a TokenArgument to one of spec.md §4.1's argument
// forms. Only meaningful when Token.Type == TokenArgument.
type ArgumentKind int

const (
	ArgRegister ArgumentKind = iota
	ArgPin
	ArgInt
	ArgFloat
	ArgString
	ArgConstant
	ArgLabelRef
)

// Token is one lexical unit with its source Location and, for arguments,
// its decoded payload.
type Token struct {
	Type TokenType
	Loc  sourcemap.Location

	// Text holds: the comment body (TokenComment), the label name
	// (TokenLabel), the lower-cased mnemonic (TokenOperation), the
	// constant name without its leading dot (ArgConstant), the label
	// name (ArgLabelRef), or the unquoted string contents (ArgString).
	Text string

	ArgKind  ArgumentKind
	Register assembly.RegisterKind
	PinID    int
	IntVal   int32
	FloatVal float32
}

func (t Token) String() string {
	switch t.Type {
	case TokenComment:
		return fmt.Sprintf("comment(%q)", t.Text)
	case TokenLabel:
		return fmt.Sprintf("label(%q)", t.Text)
	case TokenOperation:
		return fmt.Sprintf("operation(%q)", t.Text)
	case TokenArgument:
		switch t.ArgKind {
		case ArgRegister:
			return fmt.Sprintf("argument(register %s)", t.Register)
		case ArgPin:
			return fmt.Sprintf("argument(pin p%d)", t.PinID)
		case ArgInt:
			return fmt.Sprintf("argument(int %d)", t.IntVal)
		case ArgFloat:
			return fmt.Sprintf("argument(float %g)", t.FloatVal)
		case ArgString:
			return fmt.Sprintf("argument(string %q)", t.Text)
		case ArgConstant:
			return fmt.Sprintf("argument(constant .%s)", t.Text)
		case ArgLabelRef:
			return fmt.Sprintf("argument(label %s)", t.Text)
		}
	}
	return "token(?)"
}
