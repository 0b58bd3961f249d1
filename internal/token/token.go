// Package token defines language keywords and tokens used when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	EOF     Type = "EOF"
	ILLEGAL Type = "ILLEGAL"

	LPAREN Type = "("
	RPAREN Type = ")"

	IDENT  Type = "IDENT"
	VAR    Type = "VAR"   // $name
	PARAM  Type = "PARAM" // @name
	NUMBER Type = "NUMBER"
	STRING Type = "STRING"

	PLUS        Type = "+"
	MINUS       Type = "-"
	ASTERISK    Type = "*"
	SLASH       Type = "/"
	MOD         Type = "%"
	CARET       Type = "^"
	BITOR       Type = "|"
	AMPERSAND   Type = "&"
	BANG        Type = "!"
	PLUS_PLUS   Type = "++"
	MINUS_MINUS Type = "--"
	LT          Type = "<"
	LT_LT       Type = "<<"
	LT_EQUALS   Type = "<="
	GT          Type = ">"
	GT_GT       Type = ">>"
	GT_EQUALS   Type = ">="
	ASSIGN      Type = "="
	EQ          Type = "=="
	NOT_EQ      Type = "!="

	// Keywords
	DEFINE   Type = "VAR_KW"
	SET      Type = "SET"
	IF       Type = "IF"
	FUNCTION Type = "FUNCTION"
	DO       Type = "DO"
	IMPORT   Type = "IMPORT"
	TRUE     Type = "TRUE"
	FALSE    Type = "FALSE"
	NULL     Type = "NULL"
	EQUAL    Type = "EQUAL"
	NOTEQUAL Type = "NOT_EQUAL"
)

// Reserved keywords
var keywords = map[string]Type{
	"var":       DEFINE,
	"set":       SET,
	"if":        IF,
	"fun":       FUNCTION,
	"fn":        FUNCTION,
	"do":        DO,
	"import":    IMPORT,
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"equal":     EQUAL,
	"not-equal": NOTEQUAL,
}

// LookupIdentifier used to determinate whether identifier is keyword nor not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}
