// Package compiler lowers a chal syntax tree into a flat bytecode Program.
//
// # Two-Pass Compilation Strategy
//
// The compiler makes two passes over the tree so that functions may be
// called before they are defined, and may call themselves.
//
// Pass 1: ScanFunctions
//
// Walks the entire tree, including nested function bodies, and mints one
// label per function definition. Calls are resolved against this table
// during the second pass. When two functions share a name the later
// definition wins.
//
// Pass 2: compile
//
// Recursively lowers each node into instructions while maintaining a chain
// of lexical scopes. Variables ($name) and parameters (@name) are resolved
// in separate namespaces, each walking from the innermost scope outward.
// A child scope is opened for each branch of an if form and for each
// function body, so definitions made there never leak out.
//
// # Operand Order
//
// A binary form lowers its right operand first and its left operand
// second, leaving the left operand on top of the stack. The virtual
// machine pops the left operand first, so (- 10 4) computes 10 - 4.
//
// # Calling Convention
//
// A function definition lowers to:
//
//	JMP      .end
//	LABEL    .fn
//	ST_LOC   <last param>
//	...
//	ST_LOC   <first param>
//	<body>
//	RET
//	LABEL    .end
//
// The caller pushes arguments left to right, so the prologue stores them
// into the parameter locals in reverse order. Every local owned by the
// function is recorded in the Program so the virtual machine can save and
// restore them around each call, which keeps recursion correct.
package compiler

import (
	"strings"

	"github.com/chal-lang/chal/ast"
	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/internal/token"
	"github.com/chal-lang/chal/op"
	"github.com/rs/zerolog"
)

var binaryOps = map[ast.BinaryOp]op.Code{
	ast.Add:    op.Add,
	ast.Sub:    op.Sub,
	ast.Mul:    op.Mul,
	ast.Div:    op.Div,
	ast.Mod:    op.Mod,
	ast.Pow:    op.Pow,
	ast.BOr:    op.BOr,
	ast.BAnd:   op.BAnd,
	ast.LShift: op.LShift,
	ast.RShift: op.RShift,
	ast.Eq:     op.Eq,
	ast.NEq:    op.NEq,
	ast.Lt:     op.Lt,
	ast.LtEq:   op.LtEq,
	ast.Gt:     op.Gt,
	ast.GtEq:   op.GtEq,
}

// Conditions that lower straight to a comparison jump.
var directJumps = map[ast.BinaryOp]op.Code{
	ast.Eq: op.JmpEq,
	ast.Lt: op.JmpLt,
}

// Config holds compiler configuration options.
type Config struct {
	// Filename is the source filename, used for error messages and
	// recorded on the Program.
	Filename string

	// Source is the original source code, used for better error messages.
	Source string

	// Logger receives debug output. Defaults to a disabled logger.
	Logger *zerolog.Logger
}

// Compiler lowers a syntax tree into bytecode. A Compiler is used for a
// single compilation.
type Compiler struct {
	ids *IDGen
	log zerolog.Logger

	filename string
	source   string

	// Function labels from the pre-scan.
	functions  map[string]bytecode.Label
	funcLabels map[*ast.Function]bytecode.Label

	// The innermost lexical scope.
	scope *Scope

	// Functions currently being lowered, innermost last.
	open     []*bytecode.Function
	compiled []bytecode.Function

	instructions []bytecode.Instruction
	locations    []bytecode.SourceLocation

	// Position of the node being lowered, for source locations.
	pos token.Position
}

// Compile lowers the given syntax tree and returns an immutable Program.
// Pass nil for cfg to use default settings.
func Compile(node ast.Node, cfg *Config) (*bytecode.Program, error) {
	return New(cfg).CompileAST(node)
}

// New creates and returns a new Compiler. Pass nil for cfg to use defaults.
func New(cfg *Config) *Compiler {
	c := &Compiler{
		ids:   &IDGen{},
		log:   zerolog.Nop(),
		scope: NewScope(nil),
	}
	if cfg != nil {
		c.filename = cfg.Filename
		c.source = cfg.Source
		if cfg.Logger != nil {
			c.log = *cfg.Logger
		}
	}
	return c
}

// CompileAST lowers the tree rooted at node. Lowering stops at the first
// fault, which is returned as an *errz.CompileError.
func (c *Compiler) CompileAST(node ast.Node) (*bytecode.Program, error) {
	if node == nil {
		return nil, c.errorf(errz.ErrValue, errz.E2005, token.NoPos, "", "malformed program: missing syntax tree")
	}
	c.functions, c.funcLabels = scanFunctions(node, c.ids, c.log)

	if err := c.compile(node); err != nil {
		return nil, err
	}

	program := bytecode.NewProgram(bytecode.ProgramParams{
		Source:       c.filename,
		Instructions: c.instructions,
		Functions:    c.compiled,
		Locations:    c.locations,
	})
	c.log.Debug().
		Stringer("program", program.ID()).
		Str("source", c.filename).
		Int("instructions", program.InstructionCount()).
		Int("functions", len(c.compiled)).
		Msg("compiled program")
	return program, nil
}

// compile the given node and all its children.
func (c *Compiler) compile(node ast.Node) error {
	if node == nil {
		return c.errorf(errz.ErrValue, errz.E2005, c.pos, "", "malformed node: missing expression")
	}
	prev := c.pos
	c.pos = node.Pos()
	defer func() { c.pos = prev }()

	switch node := node.(type) {
	case *ast.Noop:
		return nil
	case *ast.Compound:
		return c.compileCompound(node)
	case *ast.Number:
		c.emit(bytecode.Instruction{Op: op.LdNum, Num: node.Value})
	case *ast.String:
		c.emit(bytecode.Instruction{Op: op.LdStr, Str: node.Value})
	case *ast.Bool:
		if node.Value {
			c.emit(bytecode.Instruction{Op: op.LdTrue})
		} else {
			c.emit(bytecode.Instruction{Op: op.LdFalse})
		}
	case *ast.Null:
		c.emit(bytecode.Instruction{Op: op.LdNull})
	case *ast.RefVar:
		return c.compileRefVar(node)
	case *ast.RefParam:
		return c.compileRefParam(node)
	case *ast.Define:
		return c.compileDefine(node)
	case *ast.Assign:
		return c.compileAssign(node)
	case *ast.Unary:
		return c.compileUnary(node)
	case *ast.Binary:
		return c.compileBinary(node)
	case *ast.If:
		return c.compileIf(node)
	case *ast.Function:
		return c.compileFunction(node)
	case *ast.Call:
		return c.compileCall(node)
	case *ast.Import:
		if node.Name == "" {
			return c.malformed("import", "name")
		}
		c.emit(bytecode.Instruction{Op: op.LdBuiltin, Str: node.Name})
	default:
		return c.errorf(errz.ErrValue, errz.E2005, c.pos, "", "malformed node: unknown node type %T", node)
	}
	return nil
}

func (c *Compiler) compileCompound(node *ast.Compound) error {
	for _, child := range node.Nodes {
		if err := c.compile(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileRefVar(node *ast.RefVar) error {
	local, found := c.scope.LookupVar(node.Name)
	if !found {
		hint := errz.FormatSuggestions("$", errz.SuggestSimilar(node.Name, c.scope.VarNames()))
		if _, isParam := c.scope.LookupParam(node.Name); isParam {
			hint = "did you mean @" + node.Name + "?"
		}
		return c.errorf(errz.ErrName, errz.E2001, node.Pos(), hint, "undefined variable $%s", node.Name)
	}
	c.emit(bytecode.Instruction{Op: op.LdLoc, Local: local})
	return nil
}

func (c *Compiler) compileRefParam(node *ast.RefParam) error {
	local, found := c.scope.LookupParam(node.Name)
	if !found {
		hint := errz.FormatSuggestions("@", errz.SuggestSimilar(node.Name, c.scope.ParamNames()))
		if _, isVar := c.scope.LookupVar(node.Name); isVar {
			hint = "did you mean $" + node.Name + "?"
		}
		return c.errorf(errz.ErrName, errz.E2002, node.Pos(), hint, "undefined parameter @%s", node.Name)
	}
	c.emit(bytecode.Instruction{Op: op.LdLoc, Local: local})
	return nil
}

func (c *Compiler) compileDefine(node *ast.Define) error {
	if node.Name == "" {
		return c.malformed("var", "name")
	}
	if node.Value == nil {
		return c.malformed("var", "initializer")
	}
	local := c.ids.NextLocal()
	if err := c.scope.DefineVar(node.Name, local); err != nil {
		return c.errorf(errz.ErrName, errz.E2003, node.Pos(),
			"use (set "+node.Name+" ...) to assign a new value",
			"variable $%s is already defined in this scope", node.Name)
	}
	c.own(local)
	if err := c.compile(node.Value); err != nil {
		return err
	}
	c.emit(bytecode.Instruction{Op: op.StLoc, Local: local})
	return nil
}

func (c *Compiler) compileAssign(node *ast.Assign) error {
	if node.Name == "" {
		return c.malformed("set", "name")
	}
	if node.Value == nil {
		return c.malformed("set", "value")
	}
	local, found := c.scope.LookupVar(node.Name)
	if !found {
		hint := errz.FormatSuggestions("$", errz.SuggestSimilar(node.Name, c.scope.VarNames()))
		if _, isParam := c.scope.LookupParam(node.Name); isParam {
			hint = "parameters are read-only; define a variable with (var " + node.Name + " ...)"
		}
		return c.errorf(errz.ErrName, errz.E2001, node.Pos(), hint, "undefined variable $%s", node.Name)
	}
	if err := c.compile(node.Value); err != nil {
		return err
	}
	c.emit(bytecode.Instruction{Op: op.StLoc, Local: local})
	return nil
}

func (c *Compiler) compileUnary(node *ast.Unary) error {
	switch node.Op {
	case ast.Neg, ast.BNot:
	case ast.AddInc, ast.SubInc:
		return c.errorf(errz.ErrSyntax, errz.E2004, node.Pos(),
			"use (set name (+ $name 1)) instead",
			"unsupported unary operator %s", node.Op)
	default:
		return c.errorf(errz.ErrValue, errz.E2005, node.Pos(), "", "malformed node: unknown unary operator %d", int(node.Op))
	}
	if node.X == nil {
		return c.malformed(node.Op.String(), "operand")
	}
	if err := c.compile(node.X); err != nil {
		return err
	}
	if node.Op == ast.Neg {
		c.emit(bytecode.Instruction{Op: op.LdNum, Num: -1})
		c.emit(bytecode.Instruction{Op: op.Mul})
		return nil
	}
	c.emit(bytecode.Instruction{Op: op.BNot})
	return nil
}

func (c *Compiler) compileBinary(node *ast.Binary) error {
	code, ok := binaryOps[node.Op]
	if !ok {
		return c.errorf(errz.ErrValue, errz.E2005, node.Pos(), "", "malformed node: unknown binary operator %d", int(node.Op))
	}
	if err := c.compileOperands(node); err != nil {
		return err
	}
	c.emit(bytecode.Instruction{Op: code})
	return nil
}

// compileOperands lowers the right operand and then the left.
func (c *Compiler) compileOperands(node *ast.Binary) error {
	if node.X == nil || node.Y == nil {
		return c.malformed(node.Op.String(), "operand")
	}
	if err := c.compile(node.Y); err != nil {
		return err
	}
	return c.compile(node.X)
}

func (c *Compiler) compileIf(node *ast.If) error {
	if node.Cond == nil {
		return c.malformed("if", "condition")
	}
	if node.Body == nil {
		return c.malformed("if", "body")
	}
	body := c.ids.NextLabel()
	end := c.ids.NextLabel()

	if cond, ok := node.Cond.(*ast.Binary); ok && directJumps[cond.Op] != op.Invalid {
		if err := c.compileOperands(cond); err != nil {
			return err
		}
		c.emit(bytecode.Instruction{Op: directJumps[cond.Op], Label: body})
	} else {
		if err := c.compile(node.Cond); err != nil {
			return err
		}
		c.emit(bytecode.Instruction{Op: op.LdTrue})
		c.emit(bytecode.Instruction{Op: op.JmpEq, Label: body})
	}

	if node.Else != nil {
		if err := c.inScope(node.Else); err != nil {
			return err
		}
	}
	c.emit(bytecode.Instruction{Op: op.Jmp, Label: end})
	c.emit(bytecode.Instruction{Op: op.Label, Label: body})
	if err := c.inScope(node.Body); err != nil {
		return err
	}
	c.emit(bytecode.Instruction{Op: op.Label, Label: end})
	return nil
}

func (c *Compiler) compileFunction(node *ast.Function) error {
	if node.Name == "" {
		return c.malformed("fun", "name")
	}
	if node.Body == nil {
		return c.malformed("fun", "body")
	}
	label, ok := c.funcLabels[node]
	if !ok {
		// Only reachable when a Compiler is reused on a different tree.
		return c.errorf(errz.ErrValue, errz.E2005, node.Pos(), "", "function %s was not pre-scanned", node.Name)
	}
	end := c.ids.NextLabel()
	c.emit(bytecode.Instruction{Op: op.Jmp, Label: end})
	c.emit(bytecode.Instruction{Op: op.Label, Label: label})

	fn := &bytecode.Function{Name: node.Name, Label: label}
	c.open = append(c.open, fn)
	c.scope = NewScope(c.scope)
	defer func() {
		c.scope = c.scope.Parent()
		c.open = c.open[:len(c.open)-1]
	}()

	for _, name := range node.Params {
		if name == "" {
			return c.malformed("fun", "parameter name")
		}
		local := c.ids.NextLocal()
		if err := c.scope.DefineParam(name, local); err != nil {
			return c.errorf(errz.ErrName, errz.E2006, node.Pos(), "",
				"duplicate parameter @%s in function %s", name, node.Name)
		}
		fn.Params = append(fn.Params, local)
		c.own(local)
	}
	for i := len(fn.Params) - 1; i >= 0; i-- {
		c.emit(bytecode.Instruction{Op: op.StLoc, Local: fn.Params[i]})
	}
	if err := c.compile(node.Body); err != nil {
		return err
	}
	c.emit(bytecode.Instruction{Op: op.Ret})
	c.emit(bytecode.Instruction{Op: op.Label, Label: end})

	c.compiled = append(c.compiled, *fn)
	c.log.Debug().
		Str("function", fn.Name).
		Stringer("label", label).
		Int("params", len(fn.Params)).
		Int("locals", len(fn.Locals)).
		Msg("compiled function")
	return nil
}

func (c *Compiler) compileCall(node *ast.Call) error {
	if node.Name == "" {
		return c.malformed("call", "function name")
	}
	for _, arg := range node.Args {
		if err := c.compile(arg); err != nil {
			return err
		}
	}
	argc := len(node.Args)
	if label, ok := c.functions[node.Name]; ok {
		c.emit(bytecode.Instruction{Op: op.Call, Label: label, Argc: argc})
		return nil
	}
	// Builtins are resolved when the program runs.
	c.emit(bytecode.Instruction{Op: op.CallName, Str: node.Name, Argc: argc})
	return nil
}

// inScope lowers node inside a fresh child scope.
func (c *Compiler) inScope(node ast.Node) error {
	c.scope = NewScope(c.scope)
	defer func() { c.scope = c.scope.Parent() }()
	return c.compile(node)
}

// own records a local as belonging to the innermost open function.
func (c *Compiler) own(local bytecode.Local) {
	if n := len(c.open); n > 0 {
		fn := c.open[n-1]
		fn.Locals = append(fn.Locals, local)
	}
}

func (c *Compiler) emit(instr bytecode.Instruction) int {
	pos := len(c.instructions)
	c.instructions = append(c.instructions, instr)
	c.locations = append(c.locations, bytecode.SourceLocation{
		Line:   c.pos.LineNumber(),
		Column: c.pos.ColumnNumber(),
	})
	return pos
}

func (c *Compiler) malformed(form, missing string) error {
	return c.errorf(errz.ErrValue, errz.E2005, c.pos, "", "malformed %s form: missing %s", form, missing)
}

func (c *Compiler) errorf(kind errz.ErrorKind, code errz.Code, pos token.Position, hint, format string, args ...any) error {
	err := errz.NewCompileError(kind, code, pos, format, args...)
	err.Hint = hint
	if pos.IsValid() {
		err.SourceLine = c.sourceLine(pos.Line)
	}
	if err.Position.File == "" {
		err.Position.File = c.filename
	}
	return err
}

// sourceLine returns the 0-indexed line of the original source.
func (c *Compiler) sourceLine(line int) string {
	if c.source == "" {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}
