package vm

import (
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/errz"
)

func checkCallArgs(fn bytecode.Function, argc int) error {
	if argc == fn.Arity() {
		return nil
	}
	switch fn.Arity() {
	case 1:
		return errz.NewRuntimeError(errz.ErrValue, errz.E3002,
			"function %s takes 1 argument (%d given)", fn.Name, argc)
	default:
		return errz.NewRuntimeError(errz.ErrValue, errz.E3002,
			"function %s takes %d arguments (%d given)", fn.Name, fn.Arity(), argc)
	}
}
