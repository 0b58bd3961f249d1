package object

import (
	"math"

	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/op"
)

// TypeErrorf returns a type fault. The virtual machine fills in the
// position of the faulting instruction.
func TypeErrorf(format string, args ...any) *errz.RuntimeError {
	return errz.NewRuntimeError(errz.ErrType, errz.E3001, format, args...)
}

// BinaryOp applies an arithmetic, bitwise or comparison opcode as
// left ⊙ right.
func BinaryOp(code op.Code, left, right Object) (Object, error) {
	switch code {
	case op.Eq:
		return NewBool(Equals(left, right)), nil
	case op.NEq:
		return NewBool(!Equals(left, right)), nil
	case op.Lt, op.Gt, op.LtEq, op.GtEq:
		return NewBool(Test(code, left, right)), nil
	}
	x, xok := left.(*Number)
	y, yok := right.(*Number)
	if !xok || !yok {
		return nil, TypeErrorf("unsupported operand types for %s: %s and %s",
			code, typeName(left), typeName(right))
	}
	a, b := x.value, y.value
	switch code {
	case op.Add:
		return NewNumber(a + b), nil
	case op.Sub:
		return NewNumber(a - b), nil
	case op.Mul:
		return NewNumber(a * b), nil
	case op.Div:
		return NewNumber(a / b), nil
	case op.Mod:
		return NewNumber(math.Mod(a, b)), nil
	case op.Pow:
		return NewNumber(math.Pow(a, b)), nil
	case op.BOr:
		return NewNumber(float64(ToUint64(a) | ToUint64(b))), nil
	case op.BAnd:
		return NewNumber(float64(ToUint64(a) & ToUint64(b))), nil
	case op.LShift:
		return NewNumber(float64(ToUint64(a) << ToUint64(b))), nil
	case op.RShift:
		return NewNumber(float64(ToUint64(a) >> ToUint64(b))), nil
	}
	return nil, TypeErrorf("%s is not a binary operator", code)
}

// Test evaluates a comparison opcode or conditional jump condition as
// left ⊙ right. Equality holds only within one kind of value and ordering
// only between Numbers; every other pairing tests false.
func Test(code op.Code, left, right Object) bool {
	switch code {
	case op.Eq, op.JmpEq:
		return Equals(left, right)
	case op.NEq, op.JmpNEq:
		return !Equals(left, right)
	}
	cmp, ok := Compare(left, right)
	if !ok {
		return false
	}
	switch code {
	case op.Lt, op.JmpLt:
		return cmp < 0
	case op.Gt, op.JmpGt:
		return cmp > 0
	case op.LtEq, op.JmpLtEq:
		return cmp <= 0
	case op.GtEq, op.JmpGtEq:
		return cmp >= 0
	}
	return false
}

// BitwiseNot inverts a Bool, or complements a Number truncated to 32 bits.
func BitwiseNot(obj Object) (Object, error) {
	switch obj := obj.(type) {
	case *Bool:
		return NewBool(!obj.value), nil
	case *Number:
		return NewNumber(float64(^toUint32(obj.value))), nil
	}
	return nil, TypeErrorf("unsupported operand type for %s: %s", op.BNot, typeName(obj))
}

// ToUint64 truncates toward zero, saturating at the bounds of uint64.
// NaN and negative values become 0.
func ToUint64(f float64) uint64 {
	switch {
	case f != f || f <= 0:
		return 0
	case f >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(f)
}

func toUint32(f float64) uint32 {
	switch {
	case f != f || f <= 0:
		return 0
	case f >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(f)
}

func typeName(obj Object) Type {
	if obj == nil {
		return NULL
	}
	return obj.Type()
}
