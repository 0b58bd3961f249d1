// Package lexer converts source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chal-lang/chal/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	input    string
	position int  // current character position
	next     int  // next character position
	ch       rune // current character

	line      int
	lineStart int
	file      string
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// SetFilename sets the filename reported in token positions.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Filename returns the filename reported in token positions.
func (l *Lexer) Filename() string {
	return l.file
}

// Next returns the next token. At the end of input an EOF token is returned
// on every call.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.pos()
	switch {
	case l.ch == 0:
		return l.token(token.EOF, "", start), nil
	case l.ch == '(':
		l.readChar()
		return l.token(token.LPAREN, "(", start), nil
	case l.ch == ')':
		l.readChar()
		return l.token(token.RPAREN, ")", start), nil
	case l.ch == '$' || l.ch == '@':
		sigil := l.ch
		l.readChar()
		if !isIdentStart(l.ch) {
			return l.token(token.ILLEGAL, string(sigil), start),
				l.errorf(start, "expected identifier after %q", sigil)
		}
		name := l.readIdentifier()
		if sigil == '$' {
			return l.token(token.VAR, name, start), nil
		}
		return l.token(token.PARAM, name, start), nil
	case l.ch == '"' || l.ch == '\'':
		s, err := l.readString(start)
		if err != nil {
			return l.token(token.ILLEGAL, s, start), err
		}
		return l.token(token.STRING, s, start), nil
	case isDigit(l.ch):
		return l.token(token.NUMBER, l.readNumber(), start), nil
	case isIdentStart(l.ch):
		ident := l.readIdentifier()
		return l.token(token.LookupIdentifier(ident), ident, start), nil
	}
	return l.readOperator(start)
}

func (l *Lexer) readOperator(start token.Position) (token.Token, error) {
	ch := l.ch
	l.readChar()
	two := func(second rune, matched, single token.Type) token.Token {
		if l.ch == second {
			l.readChar()
			return l.token(matched, string(matched), start)
		}
		return l.token(single, string(single), start)
	}
	switch ch {
	case '+':
		return two('+', token.PLUS_PLUS, token.PLUS), nil
	case '-':
		return two('-', token.MINUS_MINUS, token.MINUS), nil
	case '*':
		return l.token(token.ASTERISK, "*", start), nil
	case '/':
		return l.token(token.SLASH, "/", start), nil
	case '%':
		return l.token(token.MOD, "%", start), nil
	case '^':
		return l.token(token.CARET, "^", start), nil
	case '|':
		return l.token(token.BITOR, "|", start), nil
	case '&':
		return l.token(token.AMPERSAND, "&", start), nil
	case '!':
		return two('=', token.NOT_EQ, token.BANG), nil
	case '=':
		return two('=', token.EQ, token.ASSIGN), nil
	case '<':
		if l.ch == '<' {
			l.readChar()
			return l.token(token.LT_LT, "<<", start), nil
		}
		return two('=', token.LT_EQUALS, token.LT), nil
	case '>':
		if l.ch == '>' {
			l.readChar()
			return l.token(token.GT_GT, ">>", start), nil
		}
		return two('=', token.GT_EQUALS, token.GT), nil
	}
	return l.token(token.ILLEGAL, string(ch), start),
		l.errorf(start, "unexpected character %q", ch)
}

func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.position = len(l.input)
		l.ch = 0
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.next:])
	l.position = l.next
	l.next += w
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.next
	}
	l.readChar()
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch != 0 && unicode.IsSpace(l.ch):
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for {
		// A hyphen is only part of an identifier when a letter follows it,
		// as in "not-equal".
		if isIdentPart(l.ch) || l.ch == '-' && isIdentStart(l.peekChar()) {
			l.readChar()
			continue
		}
		break
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readString(start token.Position) (string, error) {
	quote := l.ch
	l.readChar()
	var b strings.Builder
	for {
		switch l.ch {
		case 0:
			return b.String(), l.errorf(start, "unterminated string literal")
		case '\n':
			return b.String(), l.errorf(start, "newline in string literal")
		case quote:
			l.readChar()
			return b.String(), nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '"', '\'':
				b.WriteRune(l.ch)
			default:
				return b.String(), l.errorf(l.pos(), "invalid escape sequence \\%c", l.ch)
			}
			l.readChar()
		default:
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.file,
	}
}

func (l *Lexer) token(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   l.pos(),
	}
}

// GetLineText returns the full line of source text containing the position.
func (l *Lexer) GetLineText(pos token.Position) string {
	if pos.LineStart > len(l.input) {
		return ""
	}
	rest := l.input[pos.LineStart:]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		return rest[:end]
	}
	return rest
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) error {
	return &Error{
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		Line:     l.GetLineText(pos),
	}
}

// Error describes a lexical error at a specific position.
type Error struct {
	Message  string
	Position token.Position
	Line     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error: %s (line %d, column %d)",
		e.Message, e.Position.LineNumber(), e.Position.ColumnNumber())
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
