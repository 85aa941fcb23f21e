package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/ast"
	"github.com/tickvm/tickvm/sourcemap"
)

func compileSource(t *testing.T, src string) (*assembly.Assembly, error) {
	t.Helper()
	unit := sourcemap.NewAnonymous([]byte(src))
	return CompileSource(unit, assembly.DefaultLimits())
}

func TestCompileSource_SimpleProgram(t *testing.T) {
	asm, err := compileSource(t, "mov $r0 1\nadd $r0 $r0 1\nhalt")
	require.NoError(t, err)

	require.Len(t, asm.Instructions, 3)
	assert.Equal(t, assembly.OpMov, asm.Instructions[0].Operation)
	assert.Equal(t, assembly.OpHalt, asm.Instructions[2].Operation)
	assert.Equal(t, 4, asm.CodeSectionSize) // round up 3 to next multiple of 4
}

func TestCompileSource_LabelResolvesToIndex(t *testing.T) {
	asm, err := compileSource(t, "loop:\nadd $r0 $r0 1\njmp loop")
	require.NoError(t, err)

	jmpArg := asm.Instructions[1].Arguments[0]
	assert.Equal(t, assembly.ArgInt, jmpArg.Kind)
	assert.EqualValues(t, 0, jmpArg.Int)
}

func TestCompileSource_UnknownLabel(t *testing.T) {
	_, err := compileSource(t, "jmp nowhere")
	require.Error(t, err)

	var cerr *ast.CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ast.UnknownLabel, cerr.Kind)
}

func TestCompileSource_StringIsInternedOnce(t *testing.T) {
	asm, err := compileSource(t, `dbgs "hi"`+"\n"+`dbgs "hi"`)
	require.NoError(t, err)

	first := asm.Instructions[0].Arguments[0].Int
	second := asm.Instructions[1].Arguments[0].Int
	assert.Equal(t, first, second)

	// "hi\0" is 3 bytes; interning the same string twice must not grow
	// the text section further.
	assert.Equal(t, 3, len(asm.TextSection))
}

func TestCompileSource_DataConstant(t *testing.T) {
	asm, err := compileSource(t, "lw $r0 .data")
	require.NoError(t, err)

	arg := asm.Instructions[0].Arguments[1]
	assert.EqualValues(t, asm.CodeSectionSize, arg.Int)
}

func TestCompileSource_RamEndConstant(t *testing.T) {
	limits := assembly.DefaultLimits()
	unit := sourcemap.NewAnonymous([]byte("lw $r0 .ram_end"))
	asm, err := CompileSource(unit, limits)
	require.NoError(t, err)

	arg := asm.Instructions[0].Arguments[1]
	assert.EqualValues(t, limits.RAMLength, arg.Int)
}

func TestCompileSource_UnknownConstant(t *testing.T) {
	_, err := compileSource(t, "lw $r0 .bogus")
	require.Error(t, err)

	var cerr *ast.CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ast.UnknownConstant, cerr.Kind)
}

func TestCompileSource_UnknownOperation(t *testing.T) {
	_, err := compileSource(t, "frobnicate $r0")
	require.Error(t, err)

	var cerr *ast.CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ast.InvalidOperation, cerr.Kind)
}

func TestCompileSource_TooLarge(t *testing.T) {
	limits := assembly.Limits{RegularRegisters: 16, Pins: 8, StackSize: 256, RAMLength: 4}
	unit := sourcemap.NewAnonymous([]byte(`dbgs "this string does not fit in four bytes of ram"`))
	_, err := CompileSource(unit, limits)
	require.Error(t, err)
}

func TestCompileSource_PropagatesAssemblyValidatorErrors(t *testing.T) {
	_, err := compileSource(t, "halt $r0")
	require.Error(t, err)

	var aerr *assembly.AssemblyError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, assembly.InvalidInstruction, aerr.Kind)
}

func TestRoundUp4(t *testing.T) {
	assert.Equal(t, 0, roundUp4(0))
	assert.Equal(t, 4, roundUp4(1))
	assert.Equal(t, 4, roundUp4(4))
	assert.Equal(t, 8, roundUp4(5))
}
