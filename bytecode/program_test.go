package bytecode

import (
	"fmt"
	"testing"

	"github.com/chal-lang/chal/op"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

// double: (fun double (x) (* @x 2)) (double 21)
func sampleProgram() *Program {
	return NewProgram(ProgramParams{
		Source: "double.chal",
		Instructions: []Instruction{
			{Op: op.Jmp, Label: 2},
			{Op: op.Label, Label: 1},
			{Op: op.StLoc, Local: 1},
			{Op: op.LdNum, Num: 2},
			{Op: op.LdLoc, Local: 1},
			{Op: op.Mul},
			{Op: op.Ret},
			{Op: op.Label, Label: 2},
			{Op: op.LdNum, Num: 21},
			{Op: op.Call, Label: 1, Argc: 1},
		},
		Functions: []Function{
			{Name: "double", Label: 1, Params: []Local{1}, Locals: []Local{1}},
		},
		Locations: []SourceLocation{{Line: 1, Column: 1}},
	})
}

func TestIndex(t *testing.T) {
	p := sampleProgram()
	require.Equal(t, map[Label]int{1: 2, 2: 8}, p.Index())
}

func TestProgramAccessors(t *testing.T) {
	p := sampleProgram()
	require.NotEqual(t, uuid.Nil, p.ID())
	require.Equal(t, "double.chal", p.Source())
	require.Equal(t, 10, p.InstructionCount())
	require.Equal(t, op.Call, p.Instruction(9).Op)

	fn, ok := p.Function(1)
	require.True(t, ok)
	require.Equal(t, "double", fn.Name)
	require.Equal(t, 1, fn.Arity())
	_, ok = p.Function(2)
	require.False(t, ok)

	require.Equal(t, SourceLocation{Line: 1, Column: 1}, p.Location(0))
	require.True(t, p.Location(5).IsZero())
	require.True(t, p.Location(-1).IsZero())
}

func TestProgramIsImmutable(t *testing.T) {
	instrs := []Instruction{{Op: op.LdNum, Num: 1}}
	p := NewProgram(ProgramParams{Instructions: instrs})
	instrs[0].Num = 99
	require.Equal(t, 1.0, p.Instruction(0).Num)

	copied := p.Instructions()
	copied[0].Num = 42
	require.Equal(t, 1.0, p.Instruction(0).Num)
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		instr    Instruction
		expected string
	}{
		{Instruction{Op: op.LdNum, Num: 2.5}, "LD_NUM 2.5"},
		{Instruction{Op: op.LdStr, Str: "hi"}, `LD_STR "hi"`},
		{Instruction{Op: op.LdBuiltin, Str: "print"}, "LD_BUILTIN print"},
		{Instruction{Op: op.StLoc, Local: 3}, "ST_LOC l3"},
		{Instruction{Op: op.JmpEq, Label: 7}, "JMP_EQ .L7"},
		{Instruction{Op: op.Call, Label: 1, Argc: 2}, "CALL .L1 2"},
		{Instruction{Op: op.CallName, Str: "print", Argc: 1}, "CALL_NAME print 1"},
		{Instruction{Op: op.Add}, "ADD"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.instr.String())
	}
}

func TestProgramString(t *testing.T) {
	p := NewProgram(ProgramParams{Instructions: []Instruction{
		{Op: op.LdNum, Num: 3},
		{Op: op.LdNum, Num: 2},
		{Op: op.Add},
	}})
	require.Equal(t, "0000 LD_NUM 3\n0001 LD_NUM 2\n0002 ADD\n", p.String())
}

func TestVerifyValid(t *testing.T) {
	require.Nil(t, sampleProgram().Verify())
}

func TestVerifyReportsEveryProblem(t *testing.T) {
	p := NewProgram(ProgramParams{
		Instructions: []Instruction{
			{Op: op.Label, Label: 1},
			{Op: op.Label, Label: 1},
			{Op: op.Jmp, Label: 5},
			{Op: op.Call, Label: 6, Argc: -1},
			{Op: op.Code(999)},
		},
		Functions: []Function{{Name: "ghost", Label: 9}},
	})
	err := p.Verify()
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 6)
	require.Equal(t, "pc 1: label .L1 already marked at pc 0", merr.Errors[0].Error())
	require.Equal(t, "pc 4: invalid opcode 999", merr.Errors[1].Error())
	require.Equal(t, "pc 2: JMP targets unknown label .L5", merr.Errors[2].Error())
	require.Equal(t, "pc 3: CALL targets unknown label .L6", merr.Errors[3].Error())
	require.Equal(t, "pc 3: negative argument count -1", merr.Errors[4].Error())
	require.Equal(t, "function ghost: entry label .L9 is not marked", merr.Errors[5].Error())
}

func TestVerifyRejectsOversizedArgc(t *testing.T) {
	p := NewProgram(ProgramParams{
		Instructions: []Instruction{
			{Op: op.CallName, Str: "print", Argc: MaxArgc},
			{Op: op.CallName, Str: "print", Argc: 1 << 50},
		},
	})
	err := p.Verify()
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 1)
	require.Equal(t, fmt.Sprintf("pc 1: argument count %d exceeds %d", 1<<50, MaxArgc), merr.Errors[0].Error())
}
