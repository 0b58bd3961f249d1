package vm

import (
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/object"
)

// frame is one pending call on the return stack.
type frame struct {
	returnAddr *object.Addr
	callPC     int // offset of the Call instruction, for stack traces
	fn         bytecode.Function
	saved      []object.Object // caller's values of fn.Locals
}

// name returns the function name, or its label when the program carries
// no metadata for it.
func (f *frame) name() string {
	if f.fn.Name != "" {
		return f.fn.Name
	}
	return f.fn.Label.String()
}
