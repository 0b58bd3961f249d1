package errz

import (
	"fmt"
	"strings"

	"github.com/chal-lang/chal/internal/token"
)

// CompileError is a fault raised while lowering a syntax tree.
type CompileError struct {
	Kind       ErrorKind
	Code       Code
	Message    string
	Position   token.Position
	SourceLine string
	Hint       string
}

// NewCompileError creates a CompileError with a formatted message.
func NewCompileError(kind ErrorKind, code Code, pos token.Position, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:     kind,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if !e.Position.IsValid() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, location(e.Position))
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     e.Kind.String(),
		Message:  e.Message,
		Filename: e.Position.File,
		Hint:     e.Hint,
	}
	if e.Position.IsValid() {
		fe.Line = e.Position.LineNumber()
		fe.Column = e.Position.ColumnNumber()
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: fe.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	return fe
}

// StackFrame is one pending call at the time of a runtime fault.
type StackFrame struct {
	Function string // function name, or the label when unnamed
	CallPC   int    // offset of the Call instruction
}

func (f StackFrame) String() string {
	return fmt.Sprintf("at %s (called from pc %d)", f.Function, f.CallPC)
}

// RuntimeError is a fault raised by the virtual machine.
type RuntimeError struct {
	Kind    ErrorKind
	Code    Code
	Message string
	PC      int    // offset of the faulting instruction
	Op      string // name of the faulting opcode
	Stack   []StackFrame
	Cause   error
}

// NewRuntimeError creates a RuntimeError with a formatted message.
func NewRuntimeError(kind ErrorKind, code Code, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		PC:      -1,
	}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.PC < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (pc %d, %s)", e.Kind, e.Message, e.PC, e.Op)
}

// Unwrap returns the underlying cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// WithCause wraps the error with a cause.
func (e *RuntimeError) WithCause(cause error) *RuntimeError {
	e.Cause = cause
	return e
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *RuntimeError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:    e.Code,
		Kind:    e.Kind.String(),
		Message: e.Message,
		Stack:   e.Stack,
	}
	if e.PC >= 0 {
		fe.Note = fmt.Sprintf("while executing %s at pc %d", e.Op, e.PC)
	}
	return fe
}

func location(pos token.Position) string {
	var b strings.Builder
	if pos.File != "" {
		b.WriteString(pos.File)
		b.WriteString(":")
	}
	fmt.Fprintf(&b, "%d:%d", pos.LineNumber(), pos.ColumnNumber())
	return b.String()
}
