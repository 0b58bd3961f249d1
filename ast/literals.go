package ast

import (
	"strconv"

	"github.com/chal-lang/chal/internal/token"
)

// Number is a numeric literal. All numbers are float64.
type Number struct {
	ValuePos token.Position
	Literal  string
	Value    float64
}

func (x *Number) node() {}

func (x *Number) Pos() token.Position { return x.ValuePos }
func (x *Number) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Number) String() string {
	if x.Literal != "" {
		return x.Literal
	}
	return strconv.FormatFloat(x.Value, 'g', -1, 64)
}

// String is a string literal.
type String struct {
	ValuePos token.Position
	Value    string
}

func (x *String) node() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.ValuePos.Advance(len(x.Value) + 2) }
func (x *String) String() string      { return strconv.Quote(x.Value) }

// Bool is the literal true or false.
type Bool struct {
	ValuePos token.Position
	Value    bool
}

func (x *Bool) node() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.String())) }

func (x *Bool) String() string {
	if x.Value {
		return "true"
	}
	return "false"
}

// Null is the literal null.
type Null struct {
	ValuePos token.Position
}

func (x *Null) node() {}

func (x *Null) Pos() token.Position { return x.ValuePos }
func (x *Null) End() token.Position { return x.ValuePos.Advance(4) }
func (x *Null) String() string      { return "null" }

// RefVar refers to a variable by name, written "$name".
type RefVar struct {
	NamePos token.Position
	Name    string
}

func (x *RefVar) node() {}

func (x *RefVar) Pos() token.Position { return x.NamePos }
func (x *RefVar) End() token.Position { return x.NamePos.Advance(len(x.Name) + 1) }
func (x *RefVar) String() string      { return "$" + x.Name }

// RefParam refers to a function parameter by name, written "@name".
type RefParam struct {
	NamePos token.Position
	Name    string
}

func (x *RefParam) node() {}

func (x *RefParam) Pos() token.Position { return x.NamePos }
func (x *RefParam) End() token.Position { return x.NamePos.Advance(len(x.Name) + 1) }
func (x *RefParam) String() string      { return "@" + x.Name }
