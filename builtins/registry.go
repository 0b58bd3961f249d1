// Package builtins provides the registry of host functions callable from
// programs, along with a default set of them.
//
// A builtin receives direct access to the evaluation stack. It pops its
// own arguments and pushes its own result. The builtins in this package
// always push exactly one value.
package builtins

import (
	"sort"

	"github.com/chal-lang/chal/object"
)

// Call is the state passed to a builtin for one invocation.
type Call = object.Call

// Func is the signature of a host function.
type Func = object.BuiltinFunction

// Registry maps names to host functions. Populate it before execution
// starts; it is not safe for concurrent modification.
type Registry struct {
	funcs map[string]*object.Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: map[string]*object.Builtin{}}
}

// Default returns a new registry holding the default builtins.
func Default() *Registry {
	r := NewRegistry()
	for name, fn := range defaults {
		r.Register(name, fn)
	}
	return r
}

// Register adds a host function, replacing any existing one of that name.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = object.NewBuiltin(name, fn)
}

// Lookup returns the handle registered under name.
func (r *Registry) Lookup(name string) (*object.Builtin, bool) {
	if r == nil {
		return nil, false
	}
	b, ok := r.funcs[name]
	return b, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy that can be extended without affecting r.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	if r != nil {
		for name, b := range r.funcs {
			c.funcs[name] = b
		}
	}
	return c
}
