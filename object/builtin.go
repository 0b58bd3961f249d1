package object

import (
	"fmt"
	"io"

	"github.com/chal-lang/chal/errz"
)

// Stack is the evaluation stack as seen by a builtin.
type Stack interface {
	Push(obj Object) error
	Pop() (Object, error)
	Peek() (Object, error)
	Len() int
}

// Call carries the state a builtin needs for one invocation. The builtin
// is responsible for popping its Argc arguments from Stack and pushing its
// results.
type Call struct {
	Stack Stack
	Argc  int
	Out   io.Writer
}

// Args pops the call's arguments and returns them in the order they were
// pushed by the caller. Asking for more arguments than the stack holds is a
// stack underflow and leaves the stack untouched.
func (c *Call) Args() ([]Object, error) {
	if c.Argc < 0 || c.Argc > c.Stack.Len() {
		return nil, errz.NewRuntimeError(errz.ErrRuntime, errz.E3008, "stack underflow")
	}
	args := make([]Object, c.Argc)
	for i := c.Argc - 1; i >= 0; i-- {
		arg, err := c.Stack.Pop()
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

// Return pushes results onto the stack.
func (c *Call) Return(results ...Object) error {
	for _, obj := range results {
		if err := c.Stack.Push(obj); err != nil {
			return err
		}
	}
	return nil
}

// BuiltinFunction is the signature of a host function.
type BuiltinFunction func(call *Call) error

// Builtin is an opaque handle to a host function.
type Builtin struct {
	name string
	fn   BuiltinFunction
}

func NewBuiltin(name string, fn BuiltinFunction) *Builtin {
	return &Builtin{name: name, fn: fn}
}

func (b *Builtin) Type() Type {
	return BUILTIN
}

func (b *Builtin) Name() string {
	return b.name
}

// Call invokes the host function.
func (b *Builtin) Call(call *Call) error {
	return b.fn(call)
}

func (b *Builtin) Inspect() string {
	return fmt.Sprintf("builtin(%s)", b.name)
}

func (b *Builtin) String() string {
	return b.Inspect()
}

func (b *Builtin) Interface() any {
	return nil
}

// Equals always returns false. Builtin handles are not comparable, not even
// with themselves.
func (b *Builtin) Equals(other Object) bool {
	return false
}
