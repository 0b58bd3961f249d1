package builtins

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chal-lang/chal/object"
)

var defaults = map[string]Func{
	"print":   Print,
	"println": Println,
	"append":  Append,
	"concat":  Concat,
	"len":     Len,
	"str":     String,
	"type":    Type,
	"num":     Number,
	"apply":   Apply,
}

// Print writes its arguments separated by spaces and pushes null.
func Print(call *Call) error {
	return write(call, "")
}

// Println is Print followed by a newline.
func Println(call *Call) error {
	return write(call, "\n")
}

func write(call *Call, end string) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = object.PrintableValue(arg)
	}
	if call.Out != nil {
		if _, err := io.WriteString(call.Out, strings.Join(parts, " ")+end); err != nil {
			return err
		}
	}
	return call.Return(object.Null)
}

// Append extends its first argument, a string, in place with the printable
// form of the remaining arguments and pushes that same string. Every value
// sharing the buffer observes the change.
func Append(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("append: expected at least 1 argument, got %d", len(args))
	}
	target, ok := args[0].(*object.String)
	if !ok {
		return object.TypeErrorf("append() expected a string (%s given)", args[0].Type())
	}
	for _, arg := range args[1:] {
		target.Append(object.PrintableValue(arg))
	}
	return call.Return(target)
}

// Concat pushes a new string joining the printable form of its arguments.
func Concat(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(object.PrintableValue(arg))
	}
	return call.Return(object.NewString(b.String()))
}

// Len pushes the length of a string in bytes.
func Len(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("len: expected 1 argument, got %d", len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return object.TypeErrorf("len() unsupported argument (%s given)", args[0].Type())
	}
	return call.Return(object.NewNumber(float64(s.Len())))
}

// String pushes a new string holding the printable form of its argument.
func String(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("str: expected 1 argument, got %d", len(args))
	}
	return call.Return(object.NewString(object.PrintableValue(args[0])))
}

// Type pushes the type name of its argument.
func Type(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("type: expected 1 argument, got %d", len(args))
	}
	return call.Return(object.NewString(string(args[0].Type())))
}

// Number converts a string, bool or number to a number.
func Number(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("num: expected 1 argument, got %d", len(args))
	}
	switch arg := args[0].(type) {
	case *object.Number:
		return call.Return(arg)
	case *object.Bool:
		if arg.Value() {
			return call.Return(object.NewNumber(1))
		}
		return call.Return(object.NewNumber(0))
	case *object.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(arg.Value()), 64)
		if err != nil {
			return fmt.Errorf("num: invalid number %q", arg.Value())
		}
		return call.Return(object.NewNumber(f))
	}
	return object.TypeErrorf("num() unsupported argument (%s given)", args[0].Type())
}

// Apply invokes a builtin handle, such as one loaded with import, with the
// remaining arguments.
func Apply(call *Call) error {
	args, err := call.Args()
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("apply: expected at least 1 argument, got %d", len(args))
	}
	fn, ok := args[0].(*object.Builtin)
	if !ok {
		return object.TypeErrorf("apply() expected a builtin (%s given)", args[0].Type())
	}
	if err := call.Return(args[1:]...); err != nil {
		return err
	}
	return fn.Call(&Call{Stack: call.Stack, Argc: len(args) - 1, Out: call.Out})
}
