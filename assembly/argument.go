package assembly

import "fmt"

// ArgumentKind discriminates the narrow, post-compile Argument union the
// VM dispatches on. Unlike the AST's Argument (see package ast), labels,
// string literals and constants have already been erased by the compiler
// into Int addresses by the time an Argument reaches this package -
// except Pin, which the compiler passes through unchanged (spec.md §4.3
// step 2) for forward compatibility with host-mapped I/O pins. No opcode
// in spec.md §6's operand table currently accepts a Pin as an operand, so
// in practice a Pin argument can only ever occupy a position that the
// Assembly Validator rejects on kind grounds - only its id bound
// (spec.md §4.4a) is otherwise enforced.
type ArgumentKind int

const (
	ArgRegister ArgumentKind = iota
	ArgInt
	ArgFloat
	ArgPin
)

// Argument is one compiled operand.
type Argument struct {
	Kind     ArgumentKind `json:"kind"`
	Register RegisterKind `json:"register,omitempty"`
	Int      int32        `json:"int,omitempty"`
	Float    float32      `json:"float,omitempty"`
	PinID    int          `json:"pin_id,omitempty"`
}

// Reg builds a Register argument.
func Reg(r RegisterKind) Argument { return Argument{Kind: ArgRegister, Register: r} }

// Int32 builds an Int argument.
func Int32(v int32) Argument { return Argument{Kind: ArgInt, Int: v} }

// Float32 builds a Float argument.
func Float32(v float32) Argument { return Argument{Kind: ArgFloat, Float: v} }

// PinArg builds a Pin argument.
func PinArg(id int) Argument { return Argument{Kind: ArgPin, PinID: id} }

// IsNumberOrRegister reports whether this argument satisfies the "Number
// or Register" operand class used throughout spec.md §6's opcode table.
func (a Argument) IsNumberOrRegister() bool {
	return a.Kind == ArgInt || a.Kind == ArgFloat || a.Kind == ArgRegister
}

// IsWritableRegister reports whether this argument is a Register operand
// that may be written to (Regular or ProgramCounter).
func (a Argument) IsWritableRegister() bool {
	return a.Kind == ArgRegister && a.Register.Writable()
}

func (a Argument) String() string {
	switch a.Kind {
	case ArgRegister:
		return a.Register.String()
	case ArgInt:
		return fmt.Sprintf("%d", a.Int)
	case ArgFloat:
		return fmt.Sprintf("%g", a.Float)
	case ArgPin:
		return fmt.Sprintf("p%d", a.PinID)
	default:
		return "<invalid argument>"
	}
}
