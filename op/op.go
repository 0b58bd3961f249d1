// Package op defines opcodes used by the compiler and virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Execution
	Nop      Code = 1
	Label    Code = 2
	Call     Code = 3
	CallName Code = 4
	Ret      Code = 5

	// Jump
	Jmp     Code = 10
	JmpEq   Code = 11
	JmpNEq  Code = 12
	JmpLt   Code = 13
	JmpGt   Code = 14
	JmpLtEq Code = 15
	JmpGtEq Code = 16

	// Load
	LdNull    Code = 20
	LdTrue    Code = 21
	LdFalse   Code = 22
	LdNum     Code = 23
	LdStr     Code = 24
	LdBuiltin Code = 25
	LdLoc     Code = 26

	// Store
	StLoc Code = 30

	// Arithmetic
	Add Code = 40
	Sub Code = 41
	Mul Code = 42
	Div Code = 43
	Mod Code = 44
	Pow Code = 45

	// Bitwise
	BOr    Code = 50
	BAnd   Code = 51
	BNot   Code = 52
	LShift Code = 53
	RShift Code = 54

	// Comparison
	Eq   Code = 60
	NEq  Code = 61
	Lt   Code = 62
	Gt   Code = 63
	LtEq Code = 64
	GtEq Code = 65
)

// Operand describes which field of an instruction an opcode reads.
type Operand uint8

const (
	OperandNone   Operand = iota
	OperandNumber         // Num
	OperandString         // Str, a string constant
	OperandName           // Str, a builtin name
	OperandLocal          // Local
	OperandLabel          // Label
	OperandCall           // Label and Argc
	OperandCallName       // Str and Argc
)

// Info contains information about an opcode.
type Info struct {
	Code    Code
	Name    string
	Operand Operand
	// Pops and Pushes describe the fixed stack effect. Call, CallName and
	// Ret have a variable effect and report zero for both.
	Pops   int
	Pushes int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op      Code
		name    string
		operand Operand
		pops    int
		pushes  int
	}
	ops := []opInfo{
		{Nop, "NOP", OperandNone, 0, 0},
		{Label, "LABEL", OperandLabel, 0, 0},
		{Call, "CALL", OperandCall, 0, 0},
		{CallName, "CALL_NAME", OperandCallName, 0, 0},
		{Ret, "RET", OperandNone, 0, 0},
		{Jmp, "JMP", OperandLabel, 0, 0},
		{JmpEq, "JMP_EQ", OperandLabel, 2, 0},
		{JmpNEq, "JMP_NEQ", OperandLabel, 2, 0},
		{JmpLt, "JMP_LT", OperandLabel, 2, 0},
		{JmpGt, "JMP_GT", OperandLabel, 2, 0},
		{JmpLtEq, "JMP_LTEQ", OperandLabel, 2, 0},
		{JmpGtEq, "JMP_GTEQ", OperandLabel, 2, 0},
		{LdNull, "LD_NULL", OperandNone, 0, 1},
		{LdTrue, "LD_TRUE", OperandNone, 0, 1},
		{LdFalse, "LD_FALSE", OperandNone, 0, 1},
		{LdNum, "LD_NUM", OperandNumber, 0, 1},
		{LdStr, "LD_STR", OperandString, 0, 1},
		{LdBuiltin, "LD_BUILTIN", OperandName, 0, 1},
		{LdLoc, "LD_LOC", OperandLocal, 0, 1},
		{StLoc, "ST_LOC", OperandLocal, 1, 0},
		{Add, "ADD", OperandNone, 2, 1},
		{Sub, "SUB", OperandNone, 2, 1},
		{Mul, "MUL", OperandNone, 2, 1},
		{Div, "DIV", OperandNone, 2, 1},
		{Mod, "MOD", OperandNone, 2, 1},
		{Pow, "POW", OperandNone, 2, 1},
		{BOr, "BOR", OperandNone, 2, 1},
		{BAnd, "BAND", OperandNone, 2, 1},
		{BNot, "BNOT", OperandNone, 1, 1},
		{LShift, "LSHIFT", OperandNone, 2, 1},
		{RShift, "RSHIFT", OperandNone, 2, 1},
		{Eq, "EQ", OperandNone, 2, 1},
		{NEq, "NEQ", OperandNone, 2, 1},
		{Lt, "LT", OperandNone, 2, 1},
		{Gt, "GT", OperandNone, 2, 1},
		{LtEq, "LTEQ", OperandNone, 2, 1},
		{GtEq, "GTEQ", OperandNone, 2, 1},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:    o.op,
			Name:    o.name,
			Operand: o.operand,
			Pops:    o.pops,
			Pushes:  o.pushes,
		}
	}
}

// GetInfo returns information about the given opcode. Unknown opcodes
// return an Info with an empty Name.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{Code: op}
	}
	return infos[op]
}

// Valid reports whether op is a defined opcode.
func (op Code) Valid() bool {
	return GetInfo(op).Name != ""
}

func (op Code) String() string {
	if name := GetInfo(op).Name; name != "" {
		return name
	}
	return "INVALID"
}

// IsJump reports whether op transfers control to a label.
func (op Code) IsJump() bool {
	return op >= Jmp && op <= JmpGtEq
}

// IsConditionalJump reports whether op pops two values and jumps on a test.
func (op Code) IsConditionalJump() bool {
	return op > Jmp && op <= JmpGtEq
}

// ReferencesLabel reports whether op carries a label that must resolve.
func (op Code) ReferencesLabel() bool {
	return op.IsJump() || op == Call
}
