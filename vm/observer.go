package vm

import (
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/op"
)

// StepMode selects which instructions produce an OnStep event.
type StepMode uint8

const (
	StepAll     StepMode = iota // every instruction
	StepNone                    // calls and returns only
	StepSampled                 // one event per SampleInterval instructions
	StepOnLine                  // first instruction of each new source line
)

// ObserverConfig is read once, when the machine is constructed.
type ObserverConfig struct {
	StepMode StepMode
	// Only consulted for StepSampled. Non-positive means 1.
	SampleInterval int
	ObserveCalls   bool
	ObserveReturns bool
}

// NewObserverConfig returns a config for the given mode with call and
// return events turned on and a sample interval of 1000.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig fixes up a sampled config with a non-positive interval.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is notified as the machine executes. Any callback returning false
// stops the run with ErrHalted. Embed NoOpObserver to implement a
// subset.
type Observer interface {
	Config() ObserverConfig
	OnStep(event StepEvent) bool
	OnCall(event CallEvent) bool
	OnReturn(event ReturnEvent) bool
}

// StepEvent is delivered before the instruction at PC runs.
type StepEvent struct {
	PC         int
	Opcode     op.Code
	OpcodeName string
	Location   bytecode.SourceLocation
	StackDepth int // operand stack size
	CallDepth  int // frames pending
}

// CallEvent is delivered after a user function frame has been pushed.
type CallEvent struct {
	FunctionName string
	Label        bytecode.Label
	ArgCount     int
	Location     bytecode.SourceLocation // the call site
	CallDepth    int
}

// ReturnEvent is delivered after a frame has been popped by Ret.
type ReturnEvent struct {
	FunctionName string
	Location     bytecode.SourceLocation
	CallDepth    int
}

// NoOpObserver accepts every event and asks for all of them.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}
