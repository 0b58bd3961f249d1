package chal

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chal-lang/chal/builtins"
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
	"github.com/chal-lang/chal/parser"
	"github.com/chal-lang/chal/vm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBasicUsage(t *testing.T) {
	result, err := Eval(context.Background(), "(+ 1 2)")
	require.NoError(t, err)
	require.Equal(t, object.NewNumber(3), result)
}

func TestEmptyProgram(t *testing.T) {
	result, err := Eval(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, object.Null, result)
}

func TestCompileOnceRunMany(t *testing.T) {
	program, err := Compile(context.Background(), `
(fun fib (n)
  (if (< @n 2)
    @n
    (+ (fib (- @n 1)) (fib (- @n 2)))))
(fib 12)`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]object.Object, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			machine, err := Run(program)
			if err == nil {
				results[i], _ = machine.TOS()
			}
		}(i)
	}
	wg.Wait()
	for _, result := range results {
		require.Equal(t, object.NewNumber(144), result)
	}
}

func TestWithOutput(t *testing.T) {
	var buf bytes.Buffer
	result, err := Eval(context.Background(), `(println "hello" 42)`, WithOutput(&buf))
	require.NoError(t, err)
	require.Equal(t, object.Null, result)
	require.Equal(t, "hello 42\n", buf.String())
}

func TestWithBuiltins(t *testing.T) {
	registry := builtins.NewRegistry()
	registry.Register("double", func(call *builtins.Call) error {
		args, err := call.Args()
		if err != nil {
			return err
		}
		n := args[0].(*object.Number)
		return call.Return(object.NewNumber(n.Value() * 2))
	})
	result, err := Eval(context.Background(), "(double 21)", WithBuiltins(registry))
	require.NoError(t, err)
	require.Equal(t, object.NewNumber(42), result)

	// The default registry is not consulted once replaced.
	_, err = Eval(context.Background(), `(print "x")`, WithBuiltins(registry))
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	require.Equal(t, errz.E3004, runtimeErr.Code)
}

func TestWithStackSize(t *testing.T) {
	_, err := Eval(context.Background(), "(+ (+ (+ 1 2) 3) 4)", WithStackSize(2))
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	require.Equal(t, errz.E3007, runtimeErr.Code)
}

func TestWithMaxCallDepth(t *testing.T) {
	source := `(fun down (n) (if (< @n 1) 0 (down (- @n 1)))) (down 20)`
	result, err := Eval(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, object.NewNumber(0), result)

	_, err = Eval(context.Background(), source, WithMaxCallDepth(5))
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	require.Equal(t, errz.E3009, runtimeErr.Code)
}

func TestWithFilename(t *testing.T) {
	program, err := Compile(context.Background(), "(+ 1 2)", WithFilename("sum.chal"))
	require.NoError(t, err)
	require.Equal(t, "sum.chal", program.Source())

	_, err = Compile(context.Background(), "$missing", WithFilename("sum.chal"))
	var compileErr *errz.CompileError
	require.True(t, errors.As(err, &compileErr))
	require.Equal(t, "sum.chal", compileErr.Position.File)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	_, err := Eval(context.Background(), "(fun f () 1) (f)", WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "compiled program")
	require.Contains(t, buf.String(), `"function":"f"`)
}

type callCounter struct {
	vm.NoOpObserver
	calls int
}

func (c *callCounter) OnCall(event vm.CallEvent) bool {
	c.calls++
	return true
}

func TestWithObserver(t *testing.T) {
	counter := &callCounter{}
	_, err := Eval(context.Background(), "(fun f () 1) (f) (f) (f)", WithObserver(counter))
	require.NoError(t, err)
	require.Equal(t, 3, counter.calls)
}

func TestRunReturnsMachineOnFault(t *testing.T) {
	program, err := Compile(context.Background(), `(var x 1) (+ $x "a")`)
	require.NoError(t, err)
	machine, err := Run(program)
	require.Error(t, err)
	require.NotNil(t, machine)
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	require.Equal(t, errz.ErrType, runtimeErr.Kind)
}

func TestParseError(t *testing.T) {
	_, err := Eval(context.Background(), "(+ 1")
	var parseErr *parser.Error
	require.True(t, errors.As(err, &parseErr))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, "(+ 1 2)")
	require.ErrorIs(t, err, context.Canceled)
}
