// Package parser reads source text into the syntax tree defined by package ast.
//
// Programs are a sequence of S-expressions. A parser is created by calling
// New() with a lexer as input and should be used only once, by calling
// Parse() to produce the tree.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/chal-lang/chal/ast"
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/internal/lexer"
	"github.com/chal-lang/chal/internal/token"
)

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parse the provided input as source code and return the tree. This is
// shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Compound, error) {
	l := lexer.New(input)
	p := New(l, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in positions and errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// Parser object
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	filename string
	depth    int
	maxDepth int

	err error
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{l: l, maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" {
		l.SetFilename(p.filename)
	}
	// Fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse the program and return the root Compound node. Parsing stops at the
// first error.
func (p *Parser) Parse(ctx context.Context) (*ast.Compound, error) {
	program := &ast.Compound{}
	for p.err == nil && p.curToken.Type != token.EOF {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := p.parseExpr()
		if p.err != nil {
			break
		}
		program.Nodes = append(program.Nodes, node)
		p.nextToken()
	}
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.err != nil {
		return
	}
	tok, err := p.l.Next()
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			p.err = &Error{
				Code:       errz.E1001,
				Message:    lexErr.Message,
				Position:   lexErr.Position,
				SourceLine: lexErr.Line,
				Cause:      err,
			}
		} else {
			p.err = err
		}
	}
	p.peekToken = tok
}

func (p *Parser) setError(code errz.Code, pos token.Position, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Position:   pos,
		SourceLine: p.l.GetLineText(pos),
	}
}

func (p *Parser) unexpected(expected string) {
	if p.curToken.Type == token.EOF {
		p.setError(errz.E1002, p.curToken.StartPosition, "unexpected end of file, expected %s", expected)
		return
	}
	p.setError(errz.E1001, p.curToken.StartPosition, "unexpected %s, expected %s",
		tokenDescription(p.curToken), expected)
}

// advance moves to the next token and reports whether parsing may continue.
func (p *Parser) advance() bool {
	p.nextToken()
	return p.err == nil
}

// expectName moves to the next token, which must be an identifier.
func (p *Parser) expectName() (string, bool) {
	if !p.advance() {
		return "", false
	}
	if p.curToken.Type != token.IDENT {
		p.unexpected("identifier")
		return "", false
	}
	return p.curToken.Literal, true
}

// parseExpr parses the expression starting at curToken. On return curToken
// is the last token of the expression.
func (p *Parser) parseExpr() ast.Node {
	tok := p.curToken
	switch tok.Type {
	case token.NUMBER:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.setError(errz.E1004, tok.StartPosition, "invalid number literal %q", tok.Literal)
			return nil
		}
		return &ast.Number{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
	case token.STRING:
		return &ast.String{ValuePos: tok.StartPosition, Value: tok.Literal}
	case token.TRUE, token.FALSE:
		return &ast.Bool{ValuePos: tok.StartPosition, Value: tok.Type == token.TRUE}
	case token.NULL:
		return &ast.Null{ValuePos: tok.StartPosition}
	case token.VAR:
		return &ast.RefVar{NamePos: tok.StartPosition, Name: tok.Literal}
	case token.PARAM:
		return &ast.RefParam{NamePos: tok.StartPosition, Name: tok.Literal}
	case token.LPAREN:
		return p.parseForm()
	}
	p.unexpected("expression")
	return nil
}

func (p *Parser) parseForm() ast.Node {
	lparen := p.curToken.StartPosition
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.setError(errz.E1005, lparen, "maximum nesting depth exceeded (%d)", p.maxDepth)
		return nil
	}
	if !p.advance() {
		return nil
	}
	head := p.curToken
	switch head.Type {
	case token.RPAREN:
		return &ast.Noop{Lparen: lparen, Rparen: head.StartPosition}
	case token.DEFINE, token.SET:
		return p.parseBinding(lparen, head)
	case token.IF:
		return p.parseIf(lparen)
	case token.FUNCTION:
		return p.parseFunction(lparen)
	case token.DO:
		nodes, rparen, ok := p.parseUntilRparen()
		if !ok {
			return nil
		}
		return &ast.Compound{Lparen: lparen, Nodes: nodes, Rparen: rparen}
	case token.IMPORT:
		name, ok := p.expectName()
		if !ok {
			return nil
		}
		rparen, ok := p.expectRparen()
		if !ok {
			return nil
		}
		return &ast.Import{Lparen: lparen, Name: name, Rparen: rparen}
	case token.IDENT:
		args, rparen, ok := p.parseUntilRparen()
		if !ok {
			return nil
		}
		return &ast.Call{Lparen: lparen, Name: head.Literal, Args: args, Rparen: rparen}
	}
	// "-" is both binary and unary; parseBinary handles the one operand case.
	if op, ok := binaryOperators[head.Type]; ok {
		return p.parseBinary(lparen, head, op)
	}
	if op, ok := unaryOperators[head.Type]; ok {
		return p.parseUnary(lparen, head, op)
	}
	p.unexpected("form name")
	return nil
}

func (p *Parser) parseBinding(lparen token.Position, head token.Token) ast.Node {
	name, ok := p.expectName()
	if !ok {
		return nil
	}
	if !p.advance() {
		return nil
	}
	if p.curToken.Type == token.RPAREN {
		p.setError(errz.E1003, lparen, "%s requires a value", head.Literal)
		return nil
	}
	value := p.parseExpr()
	if p.err != nil {
		return nil
	}
	rparen, ok := p.expectRparen()
	if !ok {
		return nil
	}
	if head.Type == token.DEFINE {
		return &ast.Define{Lparen: lparen, Name: name, Value: value, Rparen: rparen}
	}
	return &ast.Assign{Lparen: lparen, Name: name, Value: value, Rparen: rparen}
}

func (p *Parser) parseIf(lparen token.Position) ast.Node {
	nodes, rparen, ok := p.parseUntilRparen()
	if !ok {
		return nil
	}
	if len(nodes) < 2 || len(nodes) > 3 {
		p.setError(errz.E1003, lparen, "if expects a condition, a body and an optional fallthrough, got %d forms", len(nodes))
		return nil
	}
	node := &ast.If{Lparen: lparen, Cond: nodes[0], Body: nodes[1], Rparen: rparen}
	if len(nodes) == 3 {
		node.Else = nodes[2]
	}
	return node
}

func (p *Parser) parseFunction(lparen token.Position) ast.Node {
	name, ok := p.expectName()
	if !ok {
		return nil
	}
	if !p.advance() {
		return nil
	}
	if p.curToken.Type != token.LPAREN {
		p.unexpected("parameter list")
		return nil
	}
	var params []string
	for {
		if !p.advance() {
			return nil
		}
		if p.curToken.Type == token.RPAREN {
			break
		}
		if p.curToken.Type != token.IDENT && p.curToken.Type != token.PARAM {
			p.unexpected("parameter name")
			return nil
		}
		params = append(params, p.curToken.Literal)
	}
	body, rparen, ok := p.parseUntilRparen()
	if !ok {
		return nil
	}
	node := &ast.Function{Lparen: lparen, Name: name, Params: params, Rparen: rparen}
	switch len(body) {
	case 0:
		p.setError(errz.E1003, lparen, "function %s has no body", name)
		return nil
	case 1:
		node.Body = body[0]
	default:
		node.Body = &ast.Compound{Lparen: body[0].Pos(), Nodes: body, Rparen: body[len(body)-1].End()}
	}
	return node
}

func (p *Parser) parseUnary(lparen token.Position, head token.Token, op ast.UnaryOp) ast.Node {
	nodes, rparen, ok := p.parseUntilRparen()
	if !ok {
		return nil
	}
	if len(nodes) != 1 {
		p.setError(errz.E1003, lparen, "operator %s expects 1 operand, got %d", head.Literal, len(nodes))
		return nil
	}
	return &ast.Unary{Lparen: lparen, Op: op, X: nodes[0], Rparen: rparen}
}

func (p *Parser) parseBinary(lparen token.Position, head token.Token, op ast.BinaryOp) ast.Node {
	nodes, rparen, ok := p.parseUntilRparen()
	if !ok {
		return nil
	}
	if len(nodes) == 1 {
		if unary, ok := unaryOperators[head.Type]; ok {
			return &ast.Unary{Lparen: lparen, Op: unary, X: nodes[0], Rparen: rparen}
		}
	}
	if len(nodes) != 2 {
		p.setError(errz.E1003, lparen, "operator %s expects 2 operands, got %d", head.Literal, len(nodes))
		return nil
	}
	return &ast.Binary{Lparen: lparen, Op: op, X: nodes[0], Y: nodes[1], Rparen: rparen}
}

// parseUntilRparen parses expressions following curToken up to and
// including the closing parenthesis of the current form.
func (p *Parser) parseUntilRparen() ([]ast.Node, token.Position, bool) {
	var nodes []ast.Node
	for {
		if !p.advance() {
			return nil, token.NoPos, false
		}
		switch p.curToken.Type {
		case token.RPAREN:
			return nodes, p.curToken.StartPosition, true
		case token.EOF:
			p.unexpected("')'")
			return nil, token.NoPos, false
		}
		node := p.parseExpr()
		if p.err != nil {
			return nil, token.NoPos, false
		}
		nodes = append(nodes, node)
	}
}

func (p *Parser) expectRparen() (token.Position, bool) {
	if !p.advance() {
		return token.NoPos, false
	}
	if p.curToken.Type != token.RPAREN {
		p.unexpected("')'")
		return token.NoPos, false
	}
	return p.curToken.StartPosition, true
}

var unaryOperators = map[token.Type]ast.UnaryOp{
	token.MINUS:       ast.Neg,
	token.BANG:        ast.BNot,
	token.PLUS_PLUS:   ast.AddInc,
	token.MINUS_MINUS: ast.SubInc,
}

var binaryOperators = map[token.Type]ast.BinaryOp{
	token.PLUS:      ast.Add,
	token.MINUS:     ast.Sub,
	token.ASTERISK:  ast.Mul,
	token.SLASH:     ast.Div,
	token.MOD:       ast.Mod,
	token.CARET:     ast.Pow,
	token.BITOR:     ast.BOr,
	token.AMPERSAND: ast.BAnd,
	token.LT_LT:     ast.LShift,
	token.GT_GT:     ast.RShift,
	token.EQUAL:     ast.Eq,
	token.EQ:        ast.Eq,
	token.ASSIGN:    ast.Eq,
	token.NOTEQUAL:  ast.NEq,
	token.NOT_EQ:    ast.NEq,
	token.LT:        ast.Lt,
	token.LT_EQUALS: ast.LtEq,
	token.GT:        ast.Gt,
	token.GT_EQUALS: ast.GtEq,
}
