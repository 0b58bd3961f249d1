package parser

import (
	"fmt"

	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/internal/token"
)

// Error describes a syntax error at a specific position in the input.
type Error struct {
	Code       errz.Code
	Message    string
	Position   token.Position
	SourceLine string
	Cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error: %s (%s%d:%d)", e.Message, filePrefix(e.Position),
		e.Position.LineNumber(), e.Position.ColumnNumber())
}

// Unwrap returns the lexer error that caused this error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *Error) FriendlyErrorMessage() string {
	return errz.NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts the parser error to a FormattedError for display.
func (e *Error) ToFormatted() *errz.FormattedError {
	fe := &errz.FormattedError{
		Code:     e.Code,
		Kind:     errz.ErrSyntax.String(),
		Message:  e.Message,
		Filename: e.Position.File,
		Line:     e.Position.LineNumber(),
		Column:   e.Position.ColumnNumber(),
	}
	if e.SourceLine != "" {
		fe.SourceLines = []errz.SourceLineEntry{
			{Number: fe.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	return fe
}

func filePrefix(pos token.Position) string {
	if pos.File == "" {
		return ""
	}
	return pos.File + ":"
}

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	case token.VAR:
		return "$" + t.Literal
	case token.PARAM:
		return "@" + t.Literal
	case token.STRING:
		return fmt.Sprintf("%q", t.Literal)
	default:
		if t.Literal == "" {
			return string(t.Type)
		}
		return t.Literal
	}
}
