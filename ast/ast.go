// Package ast folds a lexer token stream into a syntactic instruction
// list and a label-to-instruction-index map, grounded on
// parser/parser.go's instruction/label bookkeeping and
// original_source/asm/src/compiler/ast.rs's flat-token-to-tree fold.
package ast

import (
	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/lexer"
	"github.com/tickvm/tickvm/sourcemap"
)

// ArgumentKind is the AST-level argument union: wider than the
// compiled assembly.Argument because labels, strings and constants have
// not yet been resolved into integers.
type ArgumentKind int

const (
	ArgRegister ArgumentKind = iota
	ArgInt
	ArgFloat
	ArgPin
	ArgString
	ArgLabel
	ArgConstant
)

// Argument is one syntactic operand, still carrying its source Location
// for later compiler/validator diagnostics.
type Argument struct {
	Kind     ArgumentKind
	Loc      sourcemap.Location
	Register assembly.RegisterKind
	Int      int32
	Float    float32
	PinID    int
	Text     string // String contents, Label name, or Constant name
}

// Instruction is one syntactic (mnemonic, children) pair, prior to
// operation-name resolution.
type Instruction struct {
	Operation string
	Loc       sourcemap.Location
	Arguments []Argument
}

// Program is the result of AST construction: the ordered instruction
// list plus the label-to-target-index map.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
	Unit         *sourcemap.Unit
}

// Build walks tokens in order, grouping Argument tokens under the
// nearest preceding Operation and recording Label targets, per
// spec.md §4.2.
func Build(unit *sourcemap.Unit, tokens []lexer.Token) (*Program, error) {
	prog := &Program{Labels: make(map[string]int), Unit: unit}
	pendingIdx := -1

	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokenComment:
			continue

		case lexer.TokenLabel:
			if _, exists := prog.Labels[tok.Text]; exists {
				loc := tok.Loc
				return nil, NewCompilationError(DuplicateLabel, &loc, "duplicate label %q", tok.Text)
			}
			prog.Labels[tok.Text] = len(prog.Instructions)
			pendingIdx = -1

		case lexer.TokenOperation:
			prog.Instructions = append(prog.Instructions, Instruction{Operation: tok.Text, Loc: tok.Loc})
			pendingIdx = len(prog.Instructions) - 1

		case lexer.TokenArgument:
			if pendingIdx == -1 {
				loc := tok.Loc
				return nil, NewCompilationError(InvalidArgument, &loc, "argument precedes any operation")
			}
			arg := convertArgument(tok)
			inst := &prog.Instructions[pendingIdx]
			inst.Arguments = append(inst.Arguments, arg)
		}
	}

	return prog, nil
}

func convertArgument(tok lexer.Token) Argument {
	switch tok.ArgKind {
	case lexer.ArgRegister:
		return Argument{Kind: ArgRegister, Loc: tok.Loc, Register: tok.Register}
	case lexer.ArgPin:
		return Argument{Kind: ArgPin, Loc: tok.Loc, PinID: tok.PinID}
	case lexer.ArgInt:
		return Argument{Kind: ArgInt, Loc: tok.Loc, Int: tok.IntVal}
	case lexer.ArgFloat:
		return Argument{Kind: ArgFloat, Loc: tok.Loc, Float: tok.FloatVal}
	case lexer.ArgString:
		return Argument{Kind: ArgString, Loc: tok.Loc, Text: tok.Text}
	case lexer.ArgConstant:
		return Argument{Kind: ArgConstant, Loc: tok.Loc, Text: tok.Text}
	case lexer.ArgLabelRef:
		return Argument{Kind: ArgLabel, Loc: tok.Loc, Text: tok.Text}
	default:
		return Argument{Loc: tok.Loc}
	}
}
