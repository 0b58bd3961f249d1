package compiler

import (
	"testing"

	"github.com/chal-lang/chal/bytecode"
	"github.com/stretchr/testify/require"
)

func TestIDGen(t *testing.T) {
	var ids IDGen
	require.Equal(t, bytecode.Local(1), ids.NextLocal())
	require.Equal(t, bytecode.Local(2), ids.NextLocal())
	require.Equal(t, bytecode.Label(1), ids.NextLabel())
	require.Equal(t, bytecode.Local(3), ids.NextLocal())
}

func TestScopeLookup(t *testing.T) {
	root := NewScope(nil)
	require.NoError(t, root.DefineVar("x", 1))
	require.NoError(t, root.DefineParam("x", 2))

	child := NewScope(root)
	require.NoError(t, child.DefineVar("x", 3))

	local, ok := child.LookupVar("x")
	require.True(t, ok)
	require.Equal(t, bytecode.Local(3), local)

	local, ok = child.LookupParam("x")
	require.True(t, ok)
	require.Equal(t, bytecode.Local(2), local)

	local, ok = root.LookupVar("x")
	require.True(t, ok)
	require.Equal(t, bytecode.Local(1), local)

	_, ok = child.LookupVar("y")
	require.False(t, ok)
	require.Same(t, root, child.Parent())
	require.Nil(t, root.Parent())
}

func TestScopeRedefinition(t *testing.T) {
	scope := NewScope(nil)
	require.NoError(t, scope.DefineVar("x", 1))
	require.ErrorIs(t, scope.DefineVar("x", 2), ErrRedefined)
	require.NoError(t, scope.DefineParam("p", 3))
	require.ErrorIs(t, scope.DefineParam("p", 4), ErrDuplicateParam)
}

func TestScopeNames(t *testing.T) {
	root := NewScope(nil)
	require.NoError(t, root.DefineVar("b", 1))
	require.NoError(t, root.DefineVar("a", 2))
	child := NewScope(root)
	require.NoError(t, child.DefineVar("b", 3))
	require.NoError(t, child.DefineParam("p", 4))

	require.Equal(t, []string{"a", "b"}, child.VarNames())
	require.Equal(t, []string{"p"}, child.ParamNames())
	require.Empty(t, root.ParamNames())
}
