package vm

import (
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/object"
)

// Run the given program in a new Virtual Machine and return the value left
// on top of the stack, or null when the stack is empty.
func Run(program *bytecode.Program, options ...Option) (object.Object, error) {
	machine := New(program, options...)
	if err := machine.Run(); err != nil {
		return nil, err
	}
	if result, exists := machine.TOS(); exists {
		return result, nil
	}
	return object.Null, nil
}
