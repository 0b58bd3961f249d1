// Package ast defines the syntax tree consumed by the compiler.
//
// The set of node kinds is closed: every node type in this package
// implements Node, and no other package can add one.
package ast

import "github.com/chal-lang/chal/internal/token"

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string

	node()
}

// Noop is a node that produces no instructions. The parser emits it for
// an empty form "()".
type Noop struct {
	Lparen token.Position
	Rparen token.Position
}

func (x *Noop) node() {}

func (x *Noop) Pos() token.Position { return x.Lparen }
func (x *Noop) End() token.Position { return x.Rparen.Advance(1) }
func (x *Noop) String() string      { return "()" }

// Compound is a sequence of nodes evaluated in order. The program root is
// a Compound, as is the body of a "do" form.
type Compound struct {
	Lparen token.Position // zero for the implicit program root
	Nodes  []Node
	Rparen token.Position
}

func (x *Compound) node() {}

func (x *Compound) Pos() token.Position {
	if x.Lparen.IsValid() || len(x.Nodes) == 0 {
		return x.Lparen
	}
	return x.Nodes[0].Pos()
}

func (x *Compound) End() token.Position {
	if x.Rparen.IsValid() {
		return x.Rparen.Advance(1)
	}
	if n := len(x.Nodes); n > 0 {
		return x.Nodes[n-1].End()
	}
	return x.Lparen
}

func (x *Compound) String() string {
	return sexpr("do", x.Nodes...)
}

// Last returns the final node of the sequence, or nil if it is empty.
func (x *Compound) Last() Node {
	if len(x.Nodes) == 0 {
		return nil
	}
	return x.Nodes[len(x.Nodes)-1]
}
