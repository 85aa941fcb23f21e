// Package compiler lowers an ast.Program into a validated assembly.Assembly,
// grounded on KTStephano-GVM/vm/compile.go's label-then-instruction shape
// and original_source/asm/src/compiler/mod.rs's per-argument lowering
// switch.
package compiler

import (
	"math"

	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/ast"
	"github.com/tickvm/tickvm/lexer"
	"github.com/tickvm/tickvm/sourcemap"
)

const dataConstant = "data"
const ramEndConstant = "ram_end"

// CompileSource runs the full text-to-Assembly pipeline: lex, build the
// AST, lower it, then run the Assembly Validator.
func CompileSource(unit *sourcemap.Unit, limits assembly.Limits) (*assembly.Assembly, error) {
	tokens, err := lexer.Tokenize(unit)
	if err != nil {
		return nil, err
	}
	prog, err := ast.Build(unit, tokens)
	if err != nil {
		return nil, err
	}
	asm, err := Compile(prog, limits)
	if err != nil {
		return nil, err
	}
	if err := assembly.Validate(asm, limits); err != nil {
		return nil, err
	}
	return asm, nil
}

// Compile lowers prog into an Assembly, without running the Assembly
// Validator (spec.md §4.3 only; callers that need the full pipeline
// should use CompileSource).
func Compile(prog *ast.Program, limits assembly.Limits) (*assembly.Assembly, error) {
	codeSectionSize := roundUp4(len(prog.Instructions))

	out := &assembly.Assembly{
		CodeSectionSize: codeSectionSize,
		DebugInfo:       assembly.DebugInfo{Unit: prog.Unit},
	}

	interned := make(map[string]int32)

	for _, inst := range prog.Instructions {
		loc := inst.Loc

		op, ok := assembly.ParseOperation(inst.Operation)
		if !ok {
			return nil, ast.NewCompilationError(ast.InvalidOperation, &loc, "unknown operation %q", inst.Operation)
		}

		args := make([]assembly.Argument, 0, len(inst.Arguments))
		for _, a := range inst.Arguments {
			compiled, err := lowerArgument(a, prog, codeSectionSize, limits, interned, &out.TextSection)
			if err != nil {
				return nil, err
			}
			args = append(args, compiled)
		}

		out.Instructions = append(out.Instructions, assembly.Instruction{Operation: op, Arguments: args})
		out.DebugInfo.Locations = append(out.DebugInfo.Locations, loc)

		if codeSectionSize+len(out.TextSection) >= limits.RAMLength {
			return nil, ast.NewCompilationError(ast.TooLargeAssembly, &loc,
				"assembly of %d bytes exceeds ram_length %d", codeSectionSize+len(out.TextSection), limits.RAMLength)
		}
	}

	return out, nil
}

func lowerArgument(a ast.Argument, prog *ast.Program, codeSectionSize int, limits assembly.Limits, interned map[string]int32, text *[]byte) (assembly.Argument, error) {
	loc := a.Loc

	switch a.Kind {
	case ast.ArgRegister:
		return assembly.Reg(a.Register), nil
	case ast.ArgPin:
		return assembly.PinArg(a.PinID), nil
	case ast.ArgInt:
		return assembly.Int32(a.Int), nil
	case ast.ArgFloat:
		return assembly.Float32(a.Float), nil

	case ast.ArgString:
		if addr, ok := interned[a.Text]; ok {
			return assembly.Int32(addr), nil
		}
		address := codeSectionSize + len(*text)
		if address > math.MaxInt32 {
			return assembly.Argument{}, ast.NewCompilationError(ast.TooLargeAssembly, &loc,
				"interned string address %d exceeds 32-bit signed range", address)
		}
		*text = append(*text, []byte(a.Text)...)
		*text = append(*text, 0)
		interned[a.Text] = int32(address)
		return assembly.Int32(int32(address)), nil

	case ast.ArgLabel:
		target, ok := prog.Labels[a.Text]
		if !ok {
			return assembly.Argument{}, ast.NewCompilationError(ast.UnknownLabel, &loc, "unknown label %q", a.Text)
		}
		return assembly.Int32(int32(target)), nil

	case ast.ArgConstant:
		switch a.Text {
		case dataConstant:
			return assembly.Int32(int32(codeSectionSize)), nil
		case ramEndConstant:
			return assembly.Int32(int32(limits.RAMLength)), nil
		default:
			return assembly.Argument{}, ast.NewCompilationError(ast.UnknownConstant, &loc, "unknown constant %q", a.Text)
		}

	default:
		return assembly.Argument{}, ast.NewCompilationError(ast.InvalidArgument, &loc, "unrecognized argument form")
	}
}

func roundUp4(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}
