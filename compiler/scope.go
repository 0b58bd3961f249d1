package compiler

import (
	"errors"
	"sort"

	"github.com/chal-lang/chal/bytecode"
)

var (
	// ErrRedefined is returned when a variable is defined twice in one scope.
	ErrRedefined = errors.New("variable already defined in this scope")

	// ErrDuplicateParam is returned when a parameter list repeats a name.
	ErrDuplicateParam = errors.New("duplicate parameter name")
)

// Scope is a compile-time lexical scope. Variables and parameters live in
// separate namespaces, and each namespace is resolved independently along
// the parent chain.
type Scope struct {
	vars   map[string]bytecode.Local
	params map[string]bytecode.Local
	parent *Scope
}

// NewScope returns an empty scope nested inside parent. The parent may be
// nil for the root scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		vars:   map[string]bytecode.Local{},
		params: map[string]bytecode.Local{},
		parent: parent,
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// DefineVar binds name to local in this scope. Shadowing a binding from
// an enclosing scope is allowed.
func (s *Scope) DefineVar(name string, local bytecode.Local) error {
	if _, found := s.vars[name]; found {
		return ErrRedefined
	}
	s.vars[name] = local
	return nil
}

// DefineParam binds a parameter name to local in this scope.
func (s *Scope) DefineParam(name string, local bytecode.Local) error {
	if _, found := s.params[name]; found {
		return ErrDuplicateParam
	}
	s.params[name] = local
	return nil
}

// LookupVar resolves a variable name, nearest scope first.
func (s *Scope) LookupVar(name string) (bytecode.Local, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if local, found := scope.vars[name]; found {
			return local, true
		}
	}
	return 0, false
}

// LookupParam resolves a parameter name, nearest scope first.
func (s *Scope) LookupParam(name string) (bytecode.Local, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if local, found := scope.params[name]; found {
			return local, true
		}
	}
	return 0, false
}

// VarNames returns the sorted variable names visible from this scope.
func (s *Scope) VarNames() []string {
	return s.names(func(scope *Scope) map[string]bytecode.Local { return scope.vars })
}

// ParamNames returns the sorted parameter names visible from this scope.
func (s *Scope) ParamNames() []string {
	return s.names(func(scope *Scope) map[string]bytecode.Local { return scope.params })
}

func (s *Scope) names(namespace func(*Scope) map[string]bytecode.Local) []string {
	seen := map[string]bool{}
	var names []string
	for scope := s; scope != nil; scope = scope.parent {
		for name := range namespace(scope) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
