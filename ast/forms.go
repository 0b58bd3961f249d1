package ast

import (
	"strings"

	"github.com/chal-lang/chal/internal/token"
)

// Define introduces a new variable in the current scope: (var name value).
type Define struct {
	Lparen token.Position
	Name   string
	Value  Node
	Rparen token.Position
}

func (x *Define) node() {}

func (x *Define) Pos() token.Position { return x.Lparen }
func (x *Define) End() token.Position { return x.Rparen.Advance(1) }

func (x *Define) String() string {
	return sexpr("var "+x.Name, x.Value)
}

// Assign stores a new value into an existing variable: (set name value).
type Assign struct {
	Lparen token.Position
	Name   string
	Value  Node
	Rparen token.Position
}

func (x *Assign) node() {}

func (x *Assign) Pos() token.Position { return x.Lparen }
func (x *Assign) End() token.Position { return x.Rparen.Advance(1) }

func (x *Assign) String() string {
	return sexpr("set "+x.Name, x.Value)
}

// Unary applies a single-operand operator, e.g. (- 5) or (! $flags).
type Unary struct {
	Lparen token.Position
	Op     UnaryOp
	X      Node
	Rparen token.Position
}

func (x *Unary) node() {}

func (x *Unary) Pos() token.Position { return x.Lparen }
func (x *Unary) End() token.Position { return x.Rparen.Advance(1) }

func (x *Unary) String() string {
	return sexpr(x.Op.String(), x.X)
}

// Binary applies a two-operand operator. X is the left operand and Y the
// right, so (- 10 4) has X=10 and Y=4.
type Binary struct {
	Lparen token.Position
	Op     BinaryOp
	X      Node
	Y      Node
	Rparen token.Position
}

func (x *Binary) node() {}

func (x *Binary) Pos() token.Position { return x.Lparen }
func (x *Binary) End() token.Position { return x.Rparen.Advance(1) }

func (x *Binary) String() string {
	return sexpr(x.Op.String(), x.X, x.Y)
}

// If evaluates Body when Cond holds and Else otherwise. Else may be nil.
type If struct {
	Lparen token.Position
	Cond   Node
	Body   Node
	Else   Node
	Rparen token.Position
}

func (x *If) node() {}

func (x *If) Pos() token.Position { return x.Lparen }
func (x *If) End() token.Position { return x.Rparen.Advance(1) }

func (x *If) String() string {
	if x.Else == nil {
		return sexpr("if", x.Cond, x.Body)
	}
	return sexpr("if", x.Cond, x.Body, x.Else)
}

// Function declares a named function: (fun name (a b) body).
type Function struct {
	Lparen token.Position
	Name   string
	Params []string
	Body   Node
	Rparen token.Position
}

func (x *Function) node() {}

func (x *Function) Pos() token.Position { return x.Lparen }
func (x *Function) End() token.Position { return x.Rparen.Advance(1) }

func (x *Function) String() string {
	return sexpr("fun "+x.Name+" ("+strings.Join(x.Params, " ")+")", x.Body)
}

// Call invokes a user function or a host builtin by name.
type Call struct {
	Lparen token.Position
	Name   string
	Args   []Node
	Rparen token.Position
}

func (x *Call) node() {}

func (x *Call) Pos() token.Position { return x.Lparen }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	return sexpr(x.Name, x.Args...)
}

// Import loads a host builtin as a first-class value: (import name).
type Import struct {
	Lparen token.Position
	Name   string
	Rparen token.Position
}

func (x *Import) node() {}

func (x *Import) Pos() token.Position { return x.Lparen }
func (x *Import) End() token.Position { return x.Rparen.Advance(1) }
func (x *Import) String() string      { return "(import " + x.Name + ")" }

func sexpr(head string, nodes ...Node) string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(head)
	for _, n := range nodes {
		out.WriteString(" ")
		if n == nil {
			out.WriteString("<nil>")
			continue
		}
		out.WriteString(n.String())
	}
	out.WriteString(")")
	return out.String()
}
