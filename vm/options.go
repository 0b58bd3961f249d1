package vm

import (
	"io"

	"github.com/chal-lang/chal/builtins"
	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithBuiltins sets the registry used to resolve CallName and LdBuiltin.
// If not set, builtins.Default() is used.
func WithBuiltins(registry *builtins.Registry) Option {
	return func(vm *VirtualMachine) {
		vm.builtins = registry
	}
}

// WithStackSize sets the operand stack capacity. The default is
// DefaultStackSize.
func WithStackSize(size int) Option {
	return func(vm *VirtualMachine) {
		vm.stackSize = size
	}
}

// WithMaxCallDepth limits how many user function calls may be pending at
// once. The default is DefaultMaxCallDepth.
func WithMaxCallDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxCallDepth = depth
	}
}

// WithLogger sets the logger. Every step is logged at trace level, and
// calls and returns at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.log = logger
	}
}

// WithObserver sets an observer for VM execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithOutput sets the writer that builtins such as print write to.
// The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.out = w
	}
}
