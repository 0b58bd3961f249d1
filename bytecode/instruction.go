package bytecode

import (
	"fmt"
	"strconv"

	"github.com/chal-lang/chal/op"
)

// Local identifies a variable or parameter binding. Locals are unique
// within one Program. The zero Local is never minted by the compiler.
type Local uint32

func (l Local) String() string {
	return "l" + strconv.FormatUint(uint64(l), 10)
}

// Label identifies a jump target. Labels are unique within one Program.
// The zero Label is never minted by the compiler.
type Label uint32

func (l Label) String() string {
	return ".L" + strconv.FormatUint(uint64(l), 10)
}

// Instruction is one element of a Program. Which operand fields are
// meaningful depends on op.GetInfo(Op).Operand.
type Instruction struct {
	Op    op.Code
	Num   float64
	Str   string
	Local Local
	Label Label
	Argc  int
}

// OperandString renders the operand of the instruction, or "" if it has none.
func (i Instruction) OperandString() string {
	switch op.GetInfo(i.Op).Operand {
	case op.OperandNumber:
		return strconv.FormatFloat(i.Num, 'g', -1, 64)
	case op.OperandString:
		return strconv.Quote(i.Str)
	case op.OperandName:
		return i.Str
	case op.OperandLocal:
		return i.Local.String()
	case op.OperandLabel:
		return i.Label.String()
	case op.OperandCall:
		return fmt.Sprintf("%s %d", i.Label, i.Argc)
	case op.OperandCallName:
		return fmt.Sprintf("%s %d", i.Str, i.Argc)
	}
	return ""
}

func (i Instruction) String() string {
	if operand := i.OperandString(); operand != "" {
		return i.Op.String() + " " + operand
	}
	return i.Op.String()
}
