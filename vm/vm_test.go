package vm

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/chal-lang/chal/builtins"
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/compiler"
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
	"github.com/chal-lang/chal/op"
	"github.com/chal-lang/chal/parser"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string) *bytecode.Program {
	t.Helper()
	node, err := parser.Parse(context.Background(), source)
	require.NoError(t, err)
	program, err := compiler.Compile(node, &compiler.Config{Source: source})
	require.NoError(t, err)
	return program
}

func run(t *testing.T, source string, options ...Option) (*VirtualMachine, error) {
	t.Helper()
	machine := New(compile(t, source), options...)
	return machine, machine.Run()
}

func eval(t *testing.T, source string, options ...Option) object.Object {
	t.Helper()
	machine, err := run(t, source, options...)
	require.NoError(t, err)
	result, ok := machine.TOS()
	require.True(t, ok, "expected a value on the stack")
	return result
}

func runtimeError(t *testing.T, err error) *errz.RuntimeError {
	t.Helper()
	require.Error(t, err)
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr), "got %T: %v", err, err)
	return runtimeErr
}

func TestArithmeticScenario(t *testing.T) {
	require.Equal(t, object.NewNumber(5), eval(t, "(+ 2 3)"))
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected object.Object
	}{
		{"(- 10 4)", object.NewNumber(6)},
		{"(/ 10 4)", object.NewNumber(2.5)},
		{"(% 10 4)", object.NewNumber(2)},
		{"(^ 2 10)", object.NewNumber(1024)},
		{"(* 3 (- 2))", object.NewNumber(-6)},
		{"(| 5.7 2.3)", object.NewNumber(7)},
		{"(& 6 3)", object.NewNumber(2)},
		{"(<< 1 4)", object.NewNumber(16)},
		{"(>> 16 2)", object.NewNumber(4)},
		{"(< 1 2)", object.True},
		{"(> 1 2)", object.False},
		{"(<= 2 2)", object.True},
		{"(>= 1 2)", object.False},
		{"(equal 1 1)", object.True},
		{"(not-equal 1 2)", object.True},
		{`(equal "a" "a")`, object.True},
		{`(equal 1 "1")`, object.False},
		{`(< "a" "b")`, object.False},
		{`(> "b" "a")`, object.False},
		{"(equal null null)", object.True},
		{"(- 5)", object.NewNumber(-5)},
		{"(! true)", object.False},
		{"(! 0)", object.NewNumber(4294967295)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, tt.input))
		})
	}
}

func TestBitwiseTruncation(t *testing.T) {
	require.Equal(t, 7.0, eval(t, "(| 5.7 2.3)").(*object.Number).Value())
}

func TestDefineAndReference(t *testing.T) {
	require.Equal(t, object.NewNumber(5), eval(t, "(var x 5) $x"))
}

func TestAssign(t *testing.T) {
	require.Equal(t, object.NewNumber(2), eval(t, "(var x 1) (set x (+ $x 1)) $x"))
}

func TestShadowing(t *testing.T) {
	machine, err := run(t, "(var x 1) (if true (var x 2)) $x")
	require.NoError(t, err)
	result, ok := machine.TOS()
	require.True(t, ok)
	require.Equal(t, object.NewNumber(1), result)
	require.Equal(t, object.NewNumber(2), machine.Local(2))
	require.Len(t, machine.Stack(), 1)
}

func TestShadowingInitializerReadsNull(t *testing.T) {
	_, err := run(t, "(var x 1) (if true (var x (+ $x 1)))")
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3001, runtimeErr.Code)
	require.Contains(t, runtimeErr.Error(), "null and number")
}

type stepRecorder struct {
	NoOpObserver
	ops     []op.Code
	calls   []CallEvent
	returns []ReturnEvent
}

func (r *stepRecorder) OnStep(event StepEvent) bool {
	r.ops = append(r.ops, event.Opcode)
	return true
}

func (r *stepRecorder) OnCall(event CallEvent) bool {
	r.calls = append(r.calls, event)
	return true
}

func (r *stepRecorder) OnReturn(event ReturnEvent) bool {
	r.returns = append(r.returns, event)
	return true
}

func TestEqualityShortcut(t *testing.T) {
	recorder := &stepRecorder{}
	result := eval(t, `(var a 1.0) (if (equal $a 1) "one" "other")`, WithObserver(recorder))
	require.Equal(t, "one", result.(*object.String).Value())
	require.Contains(t, recorder.ops, op.JmpEq)
	require.NotContains(t, recorder.ops, op.LdTrue)
	require.NotContains(t, recorder.ops, op.Eq)
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`(if (< 2 1) "yes" "no")`, "no"},
		{`(if (< 1 2) "yes" "no")`, "yes"},
		{`(if (> 2 1) "yes" "no")`, "yes"},
		{`(if (not-equal 1 1) "yes" "no")`, "no"},
		{`(if true "yes" "no")`, "yes"},
		{`(if 1 "yes" "no")`, "no"},
		{`(if (equal "a" "a") "yes" "no")`, "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, tt.input).(*object.String).Value())
		})
	}
}

func TestIfWithoutElse(t *testing.T) {
	machine, err := run(t, `(if (< 2 1) "yes")`)
	require.NoError(t, err)
	require.Empty(t, machine.Stack())
}

func TestFactorial(t *testing.T) {
	source := `
(fun fact (n)
  (if (< @n 2)
    1
    (* @n (fact (- @n 1)))))
(fact 10)`
	require.Equal(t, object.NewNumber(3628800), eval(t, source))
}

func TestFibonacci(t *testing.T) {
	source := `
(fun fib (n)
  (if (< @n 2)
    @n
    (+ (fib (- @n 1)) (fib (- @n 2)))))
(fib 15)`
	require.Equal(t, object.NewNumber(610), eval(t, source))
}

func TestNestedCalls(t *testing.T) {
	source := `
(fun g (x) (* @x 2))
(fun f (x) (+ (g @x) 1))
(f 5)`
	machine, err := run(t, source)
	require.NoError(t, err)
	result, _ := machine.TOS()
	require.Equal(t, object.NewNumber(11), result)
	require.Equal(t, 0, machine.CallDepth())
	require.Len(t, machine.Stack(), 1)
}

func TestArgumentOrder(t *testing.T) {
	require.Equal(t, object.NewNumber(6), eval(t, "(fun sub (a b) (- @a @b)) (sub 10 4)"))
}

func TestFunctionVariables(t *testing.T) {
	require.Equal(t, object.NewNumber(7), eval(t, "(fun f (n) (do (var t (* @n 2)) (+ $t 1))) (f 3)"))
}

func TestLocalsRestoredAfterRecursion(t *testing.T) {
	source := `
(fun sum (n)
  (if (equal @n 0)
    0
    (do
      (var here @n)
      (+ $here (sum (- @n 1))))))
(sum 4)`
	require.Equal(t, object.NewNumber(10), eval(t, source))
}

func TestForwardCall(t *testing.T) {
	require.Equal(t, object.NewNumber(3), eval(t, "(var r (add 1 2)) (fun add (a b) (+ @a @b)) $r"))
}

func TestStringAliasing(t *testing.T) {
	result := eval(t, `(var a "hello") (var b $a) (append $b " world") $a`)
	require.Equal(t, "hello world", result.(*object.String).Value())
}

func TestStringLiteralsAreFresh(t *testing.T) {
	result := eval(t, `(fun f () "x") (var s (f)) (append $s "y") (f)`)
	require.Equal(t, "x", result.(*object.String).Value())
}

func TestIdempotence(t *testing.T) {
	program := compile(t, `(var s "a") (append $s "b") (print $s)`)
	var outputs []string
	var stacks [][]object.Object
	for range 2 {
		var out bytes.Buffer
		machine := New(program, WithOutput(&out))
		require.NoError(t, machine.Run())
		outputs = append(outputs, out.String())
		stacks = append(stacks, machine.Stack())
	}
	require.Equal(t, "ab", outputs[0])
	require.Equal(t, outputs[0], outputs[1])
	require.Equal(t, len(stacks[0]), len(stacks[1]))
}

func TestRunOnce(t *testing.T) {
	machine, err := run(t, "1")
	require.NoError(t, err)
	require.ErrorIs(t, machine.Run(), ErrAlreadyRan)
}

func TestRunHelper(t *testing.T) {
	result, err := Run(compile(t, "(+ 1 1)"))
	require.NoError(t, err)
	require.Equal(t, object.NewNumber(2), result)

	result, err = Run(compile(t, "(var x 1)"))
	require.NoError(t, err)
	require.Equal(t, object.Null, result)
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	machine, err := run(t, `(print "a" 1 true) (println null)`, WithOutput(&out))
	require.NoError(t, err)
	require.Equal(t, "a 1 truenull\n", out.String())
	require.Equal(t, []object.Object{object.Null, object.Null}, machine.Stack())
}

func TestImportAndApply(t *testing.T) {
	result := eval(t, `(apply (import concat) "a" "b")`)
	require.Equal(t, "ab", result.(*object.String).Value())

	result = eval(t, `(import len)`)
	require.Equal(t, object.BUILTIN, result.Type())
}

func TestStackOverflow(t *testing.T) {
	_, err := run(t, "1 2 3", WithStackSize(2))
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3007, runtimeErr.Code)
	require.Equal(t, 2, runtimeErr.PC)
	require.Equal(t, "LD_NUM", runtimeErr.Op)
}

func TestStackUnderflow(t *testing.T) {
	program := bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: []bytecode.Instruction{{Op: op.Add}},
	})
	err := New(program).Run()
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3008, runtimeErr.Code)
	require.Equal(t, 0, runtimeErr.PC)
	require.Equal(t, "ADD", runtimeErr.Op)
	require.Equal(t, "runtime error: stack underflow (pc 0, ADD)", runtimeErr.Error())
}

func TestBuiltinArgcBeyondStack(t *testing.T) {
	program := bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: []bytecode.Instruction{
			{Op: op.LdNum, Num: 1},
			{Op: op.CallName, Str: "print", Argc: 1 << 50},
		},
	})
	machine := New(program)
	runtimeErr := runtimeError(t, machine.Run())
	require.Equal(t, errz.E3008, runtimeErr.Code)
	require.Equal(t, 1, runtimeErr.PC)
	require.Equal(t, "CALL_NAME", runtimeErr.Op)
	top, ok := machine.TOS()
	require.True(t, ok)
	require.Equal(t, object.NewNumber(1), top)
}

func TestTypeFault(t *testing.T) {
	_, err := run(t, `(+ 1 "a")`)
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3001, runtimeErr.Code)
	require.Equal(t, errz.ErrType, runtimeErr.Kind)
}

func TestUnknownBuiltin(t *testing.T) {
	for _, source := range []string{"(nope 1)", "(import nope)"} {
		_, err := run(t, source)
		runtimeErr := runtimeError(t, err)
		require.Equal(t, errz.E3004, runtimeErr.Code)
		require.Contains(t, runtimeErr.Message, `"nope"`)
	}
}

func TestEmptyRegistry(t *testing.T) {
	_, err := run(t, `(print 1)`, WithBuiltins(builtins.NewRegistry()))
	require.Equal(t, errz.E3004, runtimeError(t, err).Code)
}

func TestUnknownLabel(t *testing.T) {
	for _, instr := range []bytecode.Instruction{
		{Op: op.Jmp, Label: 9},
		{Op: op.Call, Label: 9},
	} {
		program := bytecode.NewProgram(bytecode.ProgramParams{
			Instructions: []bytecode.Instruction{instr},
		})
		runtimeErr := runtimeError(t, New(program).Run())
		require.Equal(t, errz.E3005, runtimeErr.Code)
	}
}

func TestConditionalJumpToUnknownLabel(t *testing.T) {
	program := bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: []bytecode.Instruction{
			{Op: op.LdNum, Num: 1},
			{Op: op.LdNum, Num: 1},
			{Op: op.JmpEq, Label: 4},
		},
	})
	runtimeErr := runtimeError(t, New(program).Run())
	require.Equal(t, errz.E3005, runtimeErr.Code)
	require.Equal(t, 2, runtimeErr.PC)
}

func TestRetWithoutCall(t *testing.T) {
	program := bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: []bytecode.Instruction{{Op: op.Ret}},
	})
	require.Equal(t, errz.E3006, runtimeError(t, New(program).Run()).Code)
}

func TestUnknownOpcode(t *testing.T) {
	program := bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: []bytecode.Instruction{{Op: op.Code(99)}},
	})
	require.Equal(t, errz.E3003, runtimeError(t, New(program).Run()).Code)
}

func TestCallDepth(t *testing.T) {
	_, err := run(t, "(fun f () (f)) (f)", WithMaxCallDepth(10))
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3009, runtimeErr.Code)
	require.Len(t, runtimeErr.Stack, 10)
	require.Equal(t, "f", runtimeErr.Stack[0].Function)
}

func TestArityMismatch(t *testing.T) {
	_, err := run(t, "(fun f (a) @a) (f 1 2)")
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3002, runtimeErr.Code)
	require.Equal(t, "function f takes 1 argument (2 given)", runtimeErr.Message)
}

func TestFaultStackTrace(t *testing.T) {
	_, err := run(t, `(fun inner () (+ 1 "x")) (fun outer () (inner)) (outer)`)
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3001, runtimeErr.Code)
	require.Len(t, runtimeErr.Stack, 2)
	require.Equal(t, "inner", runtimeErr.Stack[0].Function)
	require.Equal(t, "outer", runtimeErr.Stack[1].Function)
}

func TestBuiltinFailure(t *testing.T) {
	cause := errors.New("boom")
	registry := builtins.NewRegistry()
	registry.Register("explode", func(call *builtins.Call) error {
		return cause
	})
	_, err := run(t, "(explode)", WithBuiltins(registry))
	runtimeErr := runtimeError(t, err)
	require.Equal(t, errz.E3010, runtimeErr.Code)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "builtin explode failed: boom", runtimeErr.Message)
}

func TestBuiltinSeesStack(t *testing.T) {
	registry := builtins.NewRegistry()
	registry.Register("sum", func(call *builtins.Call) error {
		args, err := call.Args()
		if err != nil {
			return err
		}
		total := 0.0
		for _, arg := range args {
			total += arg.(*object.Number).Value()
		}
		return call.Return(object.NewNumber(total))
	})
	require.Equal(t, object.NewNumber(6), eval(t, "(sum 1 2 3)", WithBuiltins(registry)))
}

func TestObserverCallsAndReturns(t *testing.T) {
	recorder := &stepRecorder{}
	_, err := run(t, "(fun add (a b) (+ @a @b)) (add 1 2)", WithObserver(recorder))
	require.NoError(t, err)
	require.Len(t, recorder.calls, 1)
	require.Equal(t, "add", recorder.calls[0].FunctionName)
	require.Equal(t, 2, recorder.calls[0].ArgCount)
	require.Equal(t, 1, recorder.calls[0].CallDepth)
	require.Len(t, recorder.returns, 1)
	require.Equal(t, 0, recorder.returns[0].CallDepth)
}

type haltObserver struct {
	NoOpObserver
	after int
	seen  int
}

func (h *haltObserver) OnStep(StepEvent) bool {
	h.seen++
	return h.seen <= h.after
}

func TestObserverHalt(t *testing.T) {
	_, err := run(t, "1 2 3", WithObserver(&haltObserver{after: 1}))
	require.ErrorIs(t, err, ErrHalted)
}

type sampledObserver struct {
	NoOpObserver
	steps int
}

func (s *sampledObserver) Config() ObserverConfig {
	cfg := NewObserverConfig(StepSampled)
	cfg.SampleInterval = 2
	return cfg
}

func (s *sampledObserver) OnStep(StepEvent) bool {
	s.steps++
	return true
}

func TestObserverSampled(t *testing.T) {
	observer := &sampledObserver{}
	_, err := run(t, "1 2 3 4", WithObserver(observer))
	require.NoError(t, err)
	require.Equal(t, 2, observer.steps)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	program := compile(t, "(fun f () 1) (f)")
	require.NoError(t, New(program, WithLogger(logger)).Run())
	out := buf.String()
	require.Contains(t, out, `"function":"f"`)
	require.Contains(t, out, `"message":"call"`)
	require.Contains(t, out, `"message":"return"`)
	require.Contains(t, out, program.ID().String())
}

func TestStack(t *testing.T) {
	stack := NewStack(2)
	require.Equal(t, 2, stack.Cap())
	require.NoError(t, stack.Push(object.NewNumber(1)))
	require.NoError(t, stack.Push(object.NewNumber(2)))
	require.Error(t, stack.Push(object.NewNumber(3)))

	top, err := stack.Peek()
	require.NoError(t, err)
	require.Equal(t, object.NewNumber(2), top)

	value, err := stack.Pop()
	require.NoError(t, err)
	require.Equal(t, object.NewNumber(2), value)
	require.Equal(t, object.Null, stack.items[1], "popped slot is cleared")

	_, err = stack.Pop()
	require.NoError(t, err)
	_, err = stack.Pop()
	require.Equal(t, errz.E3008, runtimeError(t, err).Code)
	_, err = stack.Peek()
	require.Error(t, err)
	require.Equal(t, 0, stack.Len())
	require.Equal(t, DefaultStackSize, NewStack(0).Cap())
}
