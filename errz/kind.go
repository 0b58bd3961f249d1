// Package errz defines the fault taxonomy shared by the compiler and the
// virtual machine.
//
// Every fault is fatal. A CompileError aborts lowering at the first problem
// and a RuntimeError stops the VM at the faulting instruction.
package errz

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates a syntax/parsing error.
	ErrSyntax ErrorKind = iota
	// ErrType indicates a type mismatch or invalid operation on a type.
	ErrType
	// ErrName indicates an undefined or duplicated name.
	ErrName
	// ErrValue indicates a structurally invalid program or value.
	ErrValue
	// ErrRuntime indicates a general runtime error.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrType:
		return "type error"
	case ErrName:
		return "name error"
	case ErrValue:
		return "value error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// FriendlyError is implemented by errors that can render a multi-line,
// human oriented report.
type FriendlyError interface {
	error
	FriendlyErrorMessage() string
}
