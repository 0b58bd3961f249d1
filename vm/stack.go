package vm

import (
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
)

// DefaultStackSize is the operand stack capacity used when none is given.
const DefaultStackSize = 255

// Stack is a fixed-capacity operand stack. Pushing past capacity and
// popping when empty are both faults; neither is ever silently repaired.
type Stack struct {
	items []object.Object
	sp    int // number of values on the stack
}

// NewStack returns an empty stack with the given capacity. A capacity
// less than one selects DefaultStackSize.
func NewStack(capacity int) *Stack {
	if capacity < 1 {
		capacity = DefaultStackSize
	}
	items := make([]object.Object, capacity)
	for i := range items {
		items[i] = object.Null
	}
	return &Stack{items: items}
}

// Push places obj on top of the stack.
func (s *Stack) Push(obj object.Object) error {
	if s.sp >= len(s.items) {
		return errz.NewRuntimeError(errz.ErrRuntime, errz.E3007,
			"stack overflow (capacity %d)", len(s.items))
	}
	s.items[s.sp] = obj
	s.sp++
	return nil
}

// Pop removes and returns the top value. The vacated slot is reset to Null.
func (s *Stack) Pop() (object.Object, error) {
	if s.sp == 0 {
		return nil, errz.NewRuntimeError(errz.ErrRuntime, errz.E3008, "stack underflow")
	}
	s.sp--
	obj := s.items[s.sp]
	s.items[s.sp] = object.Null
	return obj, nil
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (object.Object, error) {
	if s.sp == 0 {
		return nil, errz.NewRuntimeError(errz.ErrRuntime, errz.E3008, "stack underflow")
	}
	return s.items[s.sp-1], nil
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int {
	return s.sp
}

// Cap returns the stack capacity.
func (s *Stack) Cap() int {
	return len(s.items)
}

// Values returns a copy of the stack contents, bottom first.
func (s *Stack) Values() []object.Object {
	out := make([]object.Object, s.sp)
	copy(out, s.items[:s.sp])
	return out
}

var _ object.Stack = (*Stack)(nil)
