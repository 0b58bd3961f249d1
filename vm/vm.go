// Package vm provides a VirtualMachine that executes a compiled Program.
//
// The machine holds an operand stack of fixed capacity, a single store of
// local values keyed by bytecode.Local, and a return stack of pending
// calls. A Call instruction saves the callee's locals on the return stack
// and resets them to null; the matching Ret restores them. This keeps one
// flat local store while still making recursion and nested calls correct.
//
// Every fault is fatal: Run stops at the faulting instruction and returns
// an *errz.RuntimeError describing it.
package vm

import (
	"errors"
	"io"
	"os"

	"github.com/chal-lang/chal/builtins"
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
	"github.com/chal-lang/chal/op"
	"github.com/rs/zerolog"
)

// DefaultMaxCallDepth is the number of pending calls allowed when none is
// configured.
const DefaultMaxCallDepth = 1024

var (
	// ErrAlreadyRan is returned when Run is called a second time.
	ErrAlreadyRan = errors.New("vm: program already ran")

	// ErrHalted is returned when an observer stops execution.
	ErrHalted = errors.New("vm: execution halted by observer")
)

type stepKind uint8

const (
	stepNext stepKind = iota
	stepLabel
	stepAbsolute
)

// step is the outcome of executing one instruction.
type step struct {
	kind   stepKind
	label  bytecode.Label
	offset int
}

var next = step{kind: stepNext}

func jumpTo(label bytecode.Label) step { return step{kind: stepLabel, label: label} }
func jumpAbs(offset int) step         { return step{kind: stepAbsolute, offset: offset} }

// VirtualMachine executes one Program once. It is not safe for concurrent
// use, but any number of machines may share a Program.
type VirtualMachine struct {
	program *bytecode.Program
	index   map[bytecode.Label]int
	pc      int
	stack   *Stack
	locals  map[bytecode.Local]object.Object
	frames  []frame
	ran     bool

	builtins     *builtins.Registry
	stackSize    int
	maxCallDepth int
	out          io.Writer
	log          zerolog.Logger

	observer       Observer
	observerConfig ObserverConfig
	steps          int
	lastLocation   bytecode.SourceLocation
}

// New creates a Virtual Machine ready to run program. The label index is
// built once, here.
func New(program *bytecode.Program, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		program:      program,
		index:        program.Index(),
		locals:       map[bytecode.Local]object.Object{},
		stackSize:    DefaultStackSize,
		maxCallDepth: DefaultMaxCallDepth,
		out:          os.Stdout,
		log:          zerolog.Nop(),
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.builtins == nil {
		vm.builtins = builtins.Default()
	}
	if vm.maxCallDepth < 1 {
		vm.maxCallDepth = DefaultMaxCallDepth
	}
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	vm.stack = NewStack(vm.stackSize)
	vm.log = vm.log.With().Stringer("program", program.ID()).Logger()
	return vm
}

// Run executes the program until the pc passes the last instruction or a
// fault occurs. A VirtualMachine runs once; create a new one to run the
// same Program again.
func (vm *VirtualMachine) Run() error {
	if vm.ran {
		return ErrAlreadyRan
	}
	vm.ran = true
	count := vm.program.InstructionCount()
	vm.log.Debug().Int("instructions", count).Msg("run started")

	for vm.pc < count {
		pc := vm.pc
		instr := vm.program.Instruction(pc)
		if vm.observer != nil && vm.shouldStep(pc) {
			event := StepEvent{
				PC:         pc,
				Opcode:     instr.Op,
				OpcodeName: instr.Op.String(),
				Location:   vm.program.Location(pc),
				StackDepth: vm.stack.Len(),
				CallDepth:  len(vm.frames),
			}
			if !vm.observer.OnStep(event) {
				return ErrHalted
			}
		}
		vm.log.Trace().
			Int("pc", pc).
			Str("op", instr.Op.String()).
			Int("depth", len(vm.frames)).
			Int("sp", vm.stack.Len()).
			Msg("step")

		result, err := vm.exec(pc, instr)
		if err != nil {
			return vm.fault(pc, instr, err)
		}
		switch result.kind {
		case stepNext:
			vm.pc = pc + 1
		case stepAbsolute:
			vm.pc = result.offset
		case stepLabel:
			target, ok := vm.index[result.label]
			if !ok {
				return vm.fault(pc, instr, unknownLabel(result.label))
			}
			vm.pc = target
		}
	}
	vm.log.Debug().Int("sp", vm.stack.Len()).Msg("run finished")
	return nil
}

func (vm *VirtualMachine) exec(pc int, instr bytecode.Instruction) (step, error) {
	switch instr.Op {
	case op.Nop, op.Label:
		return next, nil
	case op.LdNull:
		return next, vm.stack.Push(object.Null)
	case op.LdTrue:
		return next, vm.stack.Push(object.True)
	case op.LdFalse:
		return next, vm.stack.Push(object.False)
	case op.LdNum:
		return next, vm.stack.Push(object.NewNumber(instr.Num))
	case op.LdStr:
		// A fresh buffer on every load, so mutating one value never
		// changes the literal.
		return next, vm.stack.Push(object.NewString(instr.Str))
	case op.LdBuiltin:
		fn, ok := vm.builtins.Lookup(instr.Str)
		if !ok {
			return next, unknownBuiltin(instr.Str)
		}
		return next, vm.stack.Push(fn)
	case op.LdLoc:
		return next, vm.stack.Push(vm.Local(instr.Local))
	case op.StLoc:
		value, err := vm.stack.Pop()
		if err != nil {
			return next, err
		}
		vm.locals[instr.Local] = value
		return next, nil
	case op.Jmp:
		return jumpTo(instr.Label), nil
	case op.JmpEq, op.JmpNEq, op.JmpLt, op.JmpGt, op.JmpLtEq, op.JmpGtEq:
		left, right, err := vm.popOperands()
		if err != nil {
			return next, err
		}
		if object.Test(instr.Op, left, right) {
			return jumpTo(instr.Label), nil
		}
		return next, nil
	case op.Call:
		return vm.call(pc, instr)
	case op.CallName:
		return next, vm.callBuiltin(instr)
	case op.Ret:
		return vm.ret(pc)
	case op.BNot:
		value, err := vm.stack.Pop()
		if err != nil {
			return next, err
		}
		result, err := object.BitwiseNot(value)
		if err != nil {
			return next, err
		}
		return next, vm.stack.Push(result)
	case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow,
		op.BOr, op.BAnd, op.LShift, op.RShift,
		op.Eq, op.NEq, op.Lt, op.Gt, op.LtEq, op.GtEq:
		left, right, err := vm.popOperands()
		if err != nil {
			return next, err
		}
		result, err := object.BinaryOp(instr.Op, left, right)
		if err != nil {
			return next, err
		}
		return next, vm.stack.Push(result)
	}
	return next, errz.NewRuntimeError(errz.ErrValue, errz.E3003, "unknown opcode %d", int(instr.Op))
}

// popOperands pops the left operand and then the right one.
func (vm *VirtualMachine) popOperands() (left, right object.Object, err error) {
	if left, err = vm.stack.Pop(); err != nil {
		return nil, nil, err
	}
	if right, err = vm.stack.Pop(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (vm *VirtualMachine) call(pc int, instr bytecode.Instruction) (step, error) {
	target, ok := vm.index[instr.Label]
	if !ok {
		return next, unknownLabel(instr.Label)
	}
	if len(vm.frames) >= vm.maxCallDepth {
		return next, errz.NewRuntimeError(errz.ErrRuntime, errz.E3009,
			"maximum call depth exceeded (%d)", vm.maxCallDepth)
	}
	fn, ok := vm.program.Function(instr.Label)
	if ok {
		if err := checkCallArgs(fn, instr.Argc); err != nil {
			return next, err
		}
	} else {
		fn = bytecode.Function{Label: instr.Label}
	}

	f := frame{
		returnAddr: object.NewAddr(pc + 1),
		callPC:     pc,
		fn:         fn,
		saved:      make([]object.Object, len(fn.Locals)),
	}
	for i, local := range fn.Locals {
		f.saved[i] = vm.Local(local)
		vm.locals[local] = object.Null
	}
	vm.frames = append(vm.frames, f)

	vm.log.Debug().
		Int("pc", pc).
		Str("function", f.name()).
		Int("argc", instr.Argc).
		Int("depth", len(vm.frames)).
		Msg("call")
	if vm.observer != nil && vm.observerConfig.ObserveCalls {
		event := CallEvent{
			FunctionName: f.name(),
			Label:        instr.Label,
			ArgCount:     instr.Argc,
			Location:     vm.program.Location(pc),
			CallDepth:    len(vm.frames),
		}
		if !vm.observer.OnCall(event) {
			return next, ErrHalted
		}
	}
	return jumpAbs(target), nil
}

func (vm *VirtualMachine) ret(pc int) (step, error) {
	n := len(vm.frames)
	if n == 0 {
		return next, errz.NewRuntimeError(errz.ErrRuntime, errz.E3006, "return without a pending call")
	}
	f := vm.frames[n-1]
	vm.frames = vm.frames[:n-1]
	for i, local := range f.fn.Locals {
		vm.locals[local] = f.saved[i]
	}

	vm.log.Debug().
		Int("pc", pc).
		Str("function", f.name()).
		Int("return", f.returnAddr.Offset()).
		Int("depth", len(vm.frames)).
		Msg("return")
	if vm.observer != nil && vm.observerConfig.ObserveReturns {
		event := ReturnEvent{
			FunctionName: f.name(),
			Location:     vm.program.Location(pc),
			CallDepth:    len(vm.frames),
		}
		if !vm.observer.OnReturn(event) {
			return next, ErrHalted
		}
	}
	return jumpAbs(f.returnAddr.Offset()), nil
}

func (vm *VirtualMachine) callBuiltin(instr bytecode.Instruction) error {
	fn, ok := vm.builtins.Lookup(instr.Str)
	if !ok {
		return unknownBuiltin(instr.Str)
	}
	err := fn.Call(&builtins.Call{Stack: vm.stack, Argc: instr.Argc, Out: vm.out})
	if err == nil {
		return nil
	}
	var runtimeErr *errz.RuntimeError
	if errors.As(err, &runtimeErr) {
		return err
	}
	return errz.NewRuntimeError(errz.ErrRuntime, errz.E3010,
		"builtin %s failed: %v", instr.Str, err).WithCause(err)
}

// fault fills in the location of a runtime error.
func (vm *VirtualMachine) fault(pc int, instr bytecode.Instruction, err error) error {
	if errors.Is(err, ErrHalted) {
		return err
	}
	var runtimeErr *errz.RuntimeError
	if !errors.As(err, &runtimeErr) {
		runtimeErr = errz.NewRuntimeError(errz.ErrRuntime, errz.E3010, "%v", err).WithCause(err)
	}
	if runtimeErr.PC < 0 {
		runtimeErr.PC = pc
		runtimeErr.Op = instr.Op.String()
	}
	if runtimeErr.Stack == nil {
		runtimeErr.Stack = vm.captureStack()
	}
	vm.pc = pc
	vm.log.Debug().
		Int("pc", pc).
		Str("op", instr.Op.String()).
		Str("code", string(runtimeErr.Code)).
		Msg(runtimeErr.Message)
	return runtimeErr
}

// captureStack lists the pending calls, innermost first.
func (vm *VirtualMachine) captureStack() []errz.StackFrame {
	frames := make([]errz.StackFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		frames = append(frames, errz.StackFrame{
			Function: vm.frames[i].name(),
			CallPC:   vm.frames[i].callPC,
		})
	}
	return frames
}

func (vm *VirtualMachine) shouldStep(pc int) bool {
	switch vm.observerConfig.StepMode {
	case StepAll:
		return true
	case StepSampled:
		vm.steps++
		return vm.steps%vm.observerConfig.SampleInterval == 0
	case StepOnLine:
		loc := vm.program.Location(pc)
		if loc.Line == vm.lastLocation.Line {
			return false
		}
		vm.lastLocation = loc
		return true
	}
	return false
}

// Program returns the program this machine executes.
func (vm *VirtualMachine) Program() *bytecode.Program {
	return vm.program
}

// PC returns the offset of the next instruction, or of the faulting
// instruction after a fault.
func (vm *VirtualMachine) PC() int {
	return vm.pc
}

// TOS returns the top of the operand stack.
func (vm *VirtualMachine) TOS() (object.Object, bool) {
	obj, err := vm.stack.Peek()
	if err != nil {
		return nil, false
	}
	return obj, true
}

// Stack returns the operand stack contents, bottom first.
func (vm *VirtualMachine) Stack() []object.Object {
	return vm.stack.Values()
}

// Local returns the current value of a local. Locals that were never
// stored read as null.
func (vm *VirtualMachine) Local(local bytecode.Local) object.Object {
	if value, ok := vm.locals[local]; ok {
		return value
	}
	return object.Null
}

// CallDepth returns the number of pending calls.
func (vm *VirtualMachine) CallDepth() int {
	return len(vm.frames)
}

func unknownLabel(label bytecode.Label) error {
	return errz.NewRuntimeError(errz.ErrValue, errz.E3005, "unknown label %s", label)
}

func unknownBuiltin(name string) error {
	return errz.NewRuntimeError(errz.ErrName, errz.E3004, "unknown builtin %q", name)
}
