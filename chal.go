// Package chal compiles and runs programs written in the chal S-expression
// language. Compile lowers source text into an immutable bytecode.Program,
// and Run executes a Program on a fresh virtual machine. Eval does both.
package chal

import (
	"context"
	"io"

	"github.com/chal-lang/chal/builtins"
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/compiler"
	"github.com/chal-lang/chal/object"
	"github.com/chal-lang/chal/parser"
	"github.com/chal-lang/chal/vm"
	"github.com/rs/zerolog"
)

// Option configures a chal compilation or execution.
type Option func(*options)

type options struct {
	filename     string
	builtins     *builtins.Registry
	stackSize    int
	maxCallDepth int
	logger       *zerolog.Logger
	output       io.Writer
	observer     vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerConfig(source string) *compiler.Config {
	return &compiler.Config{
		Filename: o.filename,
		Source:   source,
		Logger:   o.logger,
	}
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.builtins != nil {
		opts = append(opts, vm.WithBuiltins(o.builtins))
	}
	if o.stackSize > 0 {
		opts = append(opts, vm.WithStackSize(o.stackSize))
	}
	if o.maxCallDepth > 0 {
		opts = append(opts, vm.WithMaxCallDepth(o.maxCallDepth))
	}
	if o.logger != nil {
		opts = append(opts, vm.WithLogger(*o.logger))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithFilename sets the filename for the source code being compiled.
// This is used in error messages and is recorded on the Program.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithBuiltins replaces the default builtin registry. Programs may only call
// or import builtins registered here.
//
//	registry := builtins.Default()
//	registry.Register("now", now)
//	result, _ := chal.Eval(ctx, source, chal.WithBuiltins(registry))
func WithBuiltins(registry *builtins.Registry) Option {
	return func(o *options) {
		o.builtins = registry
	}
}

// WithStackSize sets the operand stack capacity of the virtual machine.
func WithStackSize(size int) Option {
	return func(o *options) {
		o.stackSize = size
	}
}

// WithMaxCallDepth bounds the number of nested function calls.
func WithMaxCallDepth(depth int) Option {
	return func(o *options) {
		o.maxCallDepth = depth
	}
}

// WithLogger sets the logger used by both the compiler and the virtual
// machine.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithOutput sets the writer that print and println write to.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// Compile parses and compiles source code into bytecode. The returned
// Program is immutable and may be run by several machines at once.
func Compile(ctx context.Context, source string, opts ...Option) (*bytecode.Program, error) {
	o := collectOptions(opts...)

	var parserOpts []parser.Option
	if o.filename != "" {
		parserOpts = append(parserOpts, parser.WithFilename(o.filename))
	}
	node, err := parser.Parse(ctx, source, parserOpts...)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(node, o.compilerConfig(source))
}

// Run executes a compiled program on a new virtual machine and returns the
// machine, so its final stack and locals can be inspected. The machine is
// returned even when execution faults.
func Run(program *bytecode.Program, opts ...Option) (*vm.VirtualMachine, error) {
	o := collectOptions(opts...)
	machine := vm.New(program, o.vmOpts()...)
	return machine, machine.Run()
}

// Eval compiles and runs source code. It returns the value left on top of
// the stack, or Null when the stack is empty.
func Eval(ctx context.Context, source string, opts ...Option) (object.Object, error) {
	program, err := Compile(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	machine, err := Run(program, opts...)
	if err != nil {
		return nil, err
	}
	if result, ok := machine.TOS(); ok {
		return result, nil
	}
	return object.Null, nil
}
