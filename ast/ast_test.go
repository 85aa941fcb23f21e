package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickvm/tickvm/lexer"
	"github.com/tickvm/tickvm/sourcemap"
)

func build(t *testing.T, src string) *Program {
	t.Helper()
	unit := sourcemap.NewAnonymous([]byte(src))
	toks, err := lexer.Tokenize(unit)
	require.NoError(t, err)
	prog, err := Build(unit, toks)
	require.NoError(t, err)
	return prog
}

func TestBuild_InstructionsAndArguments(t *testing.T) {
	prog := build(t, "add $r0 $r1 1")

	require.Len(t, prog.Instructions, 1)
	inst := prog.Instructions[0]
	assert.Equal(t, "add", inst.Operation)
	require.Len(t, inst.Arguments, 3)
	assert.Equal(t, ArgRegister, inst.Arguments[0].Kind)
	assert.Equal(t, ArgInt, inst.Arguments[2].Kind)
	assert.EqualValues(t, 1, inst.Arguments[2].Int)
}

func TestBuild_LabelsRecordInstructionIndex(t *testing.T) {
	prog := build(t, "mov $r0 1\nloop:\n  add $r0 $r0 1\n  jmp loop")

	require.Contains(t, prog.Labels, "loop")
	assert.Equal(t, 1, prog.Labels["loop"])
	require.Len(t, prog.Instructions, 3)

	jmp := prog.Instructions[2]
	assert.Equal(t, "jmp", jmp.Operation)
	require.Len(t, jmp.Arguments, 1)
	assert.Equal(t, ArgLabel, jmp.Arguments[0].Kind)
	assert.Equal(t, "loop", jmp.Arguments[0].Text)
}

func TestBuild_DuplicateLabel(t *testing.T) {
	unit := sourcemap.NewAnonymous([]byte("a:\nhalt\na:\nhalt"))
	toks, err := lexer.Tokenize(unit)
	require.NoError(t, err)

	_, err = Build(unit, toks)
	require.Error(t, err)

	var cerr *CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, DuplicateLabel, cerr.Kind)
}

func TestBuild_ArgumentWithoutOperation(t *testing.T) {
	unit := sourcemap.NewAnonymous([]byte("5"))
	toks, err := lexer.Tokenize(unit)
	require.NoError(t, err)

	_, err = Build(unit, toks)
	require.Error(t, err)

	var cerr *CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, InvalidArgument, cerr.Kind)
}

func TestBuild_CommentsAreSkipped(t *testing.T) {
	prog := build(t, "# header\nhalt # trailing")

	require.Len(t, prog.Instructions, 1)
	assert.Equal(t, "halt", prog.Instructions[0].Operation)
}

func TestBuild_StringAndConstantArguments(t *testing.T) {
	prog := build(t, `dbgs "hi"`+"\n"+"lw $r0 .data")

	require.Len(t, prog.Instructions, 2)
	assert.Equal(t, ArgString, prog.Instructions[0].Arguments[0].Kind)
	assert.Equal(t, "hi", prog.Instructions[0].Arguments[0].Text)
	assert.Equal(t, ArgConstant, prog.Instructions[1].Arguments[1].Kind)
	assert.Equal(t, "data", prog.Instructions[1].Arguments[1].Text)
}

func TestBuild_EmptyProgram(t *testing.T) {
	prog := build(t, "")
	assert.Empty(t, prog.Instructions)
	assert.Empty(t, prog.Labels)
}
