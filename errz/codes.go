package errz

// Code is a stable identifier for a fault.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Compile errors
//   - E3xxx: Runtime errors
type Code string

const (
	// Parse errors (E1xxx)
	E1001 Code = "E1001" // Unexpected token
	E1002 Code = "E1002" // Unclosed form
	E1003 Code = "E1003" // Malformed special form
	E1004 Code = "E1004" // Invalid number literal
	E1005 Code = "E1005" // Maximum nesting depth exceeded

	// Compile errors (E2xxx)
	E2001 Code = "E2001" // Undefined variable
	E2002 Code = "E2002" // Undefined parameter
	E2003 Code = "E2003" // Redefinition in the same scope
	E2004 Code = "E2004" // Unsupported unary operator
	E2005 Code = "E2005" // Malformed node
	E2006 Code = "E2006" // Duplicate parameter name

	// Runtime errors (E3xxx)
	E3001 Code = "E3001" // Type error
	E3002 Code = "E3002" // Invalid operand
	E3003 Code = "E3003" // Unknown opcode
	E3004 Code = "E3004" // Unknown builtin
	E3005 Code = "E3005" // Unknown label
	E3006 Code = "E3006" // Return without call
	E3007 Code = "E3007" // Stack overflow
	E3008 Code = "E3008" // Stack underflow
	E3009 Code = "E3009" // Call depth exceeded
	E3010 Code = "E3010" // Builtin failed
)

var codeDescriptions = map[Code]string{
	E1001: "unexpected token",
	E1002: "unclosed form",
	E1003: "malformed special form",
	E1004: "invalid number literal",
	E1005: "maximum nesting depth exceeded",
	E2001: "undefined variable",
	E2002: "undefined parameter",
	E2003: "redefinition in the same scope",
	E2004: "unsupported unary operator",
	E2005: "malformed node",
	E2006: "duplicate parameter name",
	E3001: "type error",
	E3002: "invalid operand",
	E3003: "unknown opcode",
	E3004: "unknown builtin",
	E3005: "unknown label",
	E3006: "return without call",
	E3007: "stack overflow",
	E3008: "stack underflow",
	E3009: "call depth exceeded",
	E3010: "builtin failed",
}

// Description returns a short description of the code.
func (c Code) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// IsParse returns true if this is a parse error code (E1xxx).
func (c Code) IsParse() bool {
	return len(c) == 5 && c[1] == '1'
}

// IsCompile returns true if this is a compile error code (E2xxx).
func (c Code) IsCompile() bool {
	return len(c) == 5 && c[1] == '2'
}

// IsRuntime returns true if this is a runtime error code (E3xxx).
func (c Code) IsRuntime() bool {
	return len(c) == 5 && c[1] == '3'
}
