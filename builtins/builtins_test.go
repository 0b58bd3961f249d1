package builtins

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
	"github.com/stretchr/testify/require"
)

type sliceStack struct {
	items []object.Object
}

func (s *sliceStack) Push(obj object.Object) error {
	s.items = append(s.items, obj)
	return nil
}

func (s *sliceStack) Pop() (object.Object, error) {
	if len(s.items) == 0 {
		return nil, fmt.Errorf("stack underflow")
	}
	obj := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return obj, nil
}

func (s *sliceStack) Peek() (object.Object, error) {
	if len(s.items) == 0 {
		return nil, fmt.Errorf("stack empty")
	}
	return s.items[len(s.items)-1], nil
}

func (s *sliceStack) Len() int {
	return len(s.items)
}

// invoke pushes args, runs fn and returns whatever it left on the stack.
func invoke(t *testing.T, fn Func, out *bytes.Buffer, args ...object.Object) ([]object.Object, error) {
	t.Helper()
	stack := &sliceStack{}
	for _, arg := range args {
		require.Nil(t, stack.Push(arg))
	}
	call := &Call{Stack: stack, Argc: len(args)}
	if out != nil {
		call.Out = out
	}
	err := fn(call)
	return stack.items, err
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	results, err := invoke(t, Print, &out, object.NewString("a"), object.NewNumber(1.5), object.True)
	require.Nil(t, err)
	require.Equal(t, "a 1.5 true", out.String())
	require.Equal(t, []object.Object{object.Null}, results)

	out.Reset()
	_, err = invoke(t, Println, &out, object.NewString("line"))
	require.Nil(t, err)
	require.Equal(t, "line\n", out.String())
}

func TestAppendMutatesInPlace(t *testing.T) {
	s := object.NewString("abc")
	alias := object.Object(s)
	results, err := invoke(t, Append, nil, s, object.NewString("def"), object.NewNumber(7))
	require.Nil(t, err)
	require.Len(t, results, 1)
	require.Same(t, s, results[0])
	require.Equal(t, "abcdef7", alias.(*object.String).Value())
}

func TestAppendTypeError(t *testing.T) {
	_, err := invoke(t, Append, nil, object.NewNumber(1), object.NewString("x"))
	var rerr *errz.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, errz.E3001, rerr.Code)
}

func TestConcatAllocates(t *testing.T) {
	a := object.NewString("x")
	results, err := invoke(t, Concat, nil, a, object.NewString("y"), object.Null)
	require.Nil(t, err)
	require.Equal(t, "xynull", results[0].(*object.String).Value())
	require.Equal(t, "x", a.Value())
}

func TestConversions(t *testing.T) {
	results, err := invoke(t, Len, nil, object.NewString("four"))
	require.Nil(t, err)
	require.Equal(t, 4.0, results[0].(*object.Number).Value())

	results, err = invoke(t, String, nil, object.NewNumber(42))
	require.Nil(t, err)
	require.Equal(t, "42", results[0].(*object.String).Value())

	results, err = invoke(t, Type, nil, object.True)
	require.Nil(t, err)
	require.Equal(t, "bool", results[0].(*object.String).Value())

	results, err = invoke(t, Number, nil, object.NewString(" 2.5 "))
	require.Nil(t, err)
	require.Equal(t, 2.5, results[0].(*object.Number).Value())

	results, err = invoke(t, Number, nil, object.True)
	require.Nil(t, err)
	require.Equal(t, 1.0, results[0].(*object.Number).Value())

	_, err = invoke(t, Number, nil, object.NewString("abc"))
	require.Equal(t, `num: invalid number "abc"`, err.Error())

	_, err = invoke(t, Len, nil)
	require.Equal(t, "len: expected 1 argument, got 0", err.Error())
}

func TestApply(t *testing.T) {
	registry := Default()
	concat, ok := registry.Lookup("concat")
	require.True(t, ok)
	results, err := invoke(t, Apply, nil, concat, object.NewString("a"), object.NewString("b"))
	require.Nil(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "ab", results[0].(*object.String).Value())

	_, err = invoke(t, Apply, nil, object.NewNumber(1))
	require.NotNil(t, err)
}

func TestRegistry(t *testing.T) {
	r := Default()
	require.Equal(t, []string{"append", "apply", "concat", "len", "num", "print", "println", "str", "type"}, r.Names())

	_, ok := r.Lookup("missing")
	require.False(t, ok)

	extended := r.Clone()
	extended.Register("answer", func(call *Call) error {
		return call.Return(object.NewNumber(42))
	})
	_, ok = extended.Lookup("answer")
	require.True(t, ok)
	_, ok = r.Lookup("answer")
	require.False(t, ok)

	var nilRegistry *Registry
	_, ok = nilRegistry.Lookup("print")
	require.False(t, ok)
	require.Nil(t, nilRegistry.Names())
}
