package compiler

import "github.com/chal-lang/chal/bytecode"

// IDGen mints locals and labels for a single compilation. Each counter
// starts at one, so the zero Local and zero Label are never produced.
type IDGen struct {
	locals uint32
	labels uint32
}

// NextLocal returns a Local that has not been returned before.
func (g *IDGen) NextLocal() bytecode.Local {
	g.locals++
	return bytecode.Local(g.locals)
}

// NextLabel returns a Label that has not been returned before.
func (g *IDGen) NextLabel() bytecode.Label {
	g.labels++
	return bytecode.Label(g.labels)
}
