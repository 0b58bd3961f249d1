package ast

// UnaryOp identifies a single-operand operator.
type UnaryOp int

const (
	Neg UnaryOp = iota + 1
	BNot
	AddInc
	SubInc
)

var unaryNames = map[UnaryOp]string{
	Neg:    "-",
	BNot:   "!",
	AddInc: "++",
	SubInc: "--",
}

func (op UnaryOp) String() string {
	if name, ok := unaryNames[op]; ok {
		return name
	}
	return "?"
}

// BinaryOp identifies a two-operand operator.
type BinaryOp int

const (
	Add BinaryOp = iota + 1
	Sub
	Mul
	Div
	Mod
	Pow

	BOr
	BAnd
	LShift
	RShift

	Eq
	NEq
	Lt
	LtEq
	Gt
	GtEq
)

var binaryNames = map[BinaryOp]string{
	Add:    "+",
	Sub:    "-",
	Mul:    "*",
	Div:    "/",
	Mod:    "%",
	Pow:    "^",
	BOr:    "|",
	BAnd:   "&",
	LShift: "<<",
	RShift: ">>",
	Eq:     "equal",
	NEq:    "not-equal",
	Lt:     "<",
	LtEq:   "<=",
	Gt:     ">",
	GtEq:   ">=",
}

func (op BinaryOp) String() string {
	if name, ok := binaryNames[op]; ok {
		return name
	}
	return "?"
}

// IsComparison reports whether the operator produces a Bool.
func (op BinaryOp) IsComparison() bool {
	return op >= Eq && op <= GtEq
}
