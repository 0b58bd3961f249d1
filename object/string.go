package object

import "strconv"

// String is a mutable text buffer. A *String is a handle: every copy of the
// pointer refers to the same buffer, so a mutation made through one handle
// is visible through all of them. The buffer is released when the last
// handle becomes unreachable.
type String struct {
	buf []byte
}

// NewString returns a handle to a fresh buffer holding value.
func NewString(value string) *String {
	return &String{buf: []byte(value)}
}

func (s *String) Type() Type {
	return STRING
}

// Value returns the current contents of the buffer.
func (s *String) Value() string {
	return string(s.buf)
}

// Len returns the length of the buffer in bytes.
func (s *String) Len() int {
	return len(s.buf)
}

// Append extends the buffer in place.
func (s *String) Append(text string) {
	s.buf = append(s.buf, text...)
}

// Set replaces the contents of the buffer in place.
func (s *String) Set(text string) {
	s.buf = append(s.buf[:0], text...)
}

func (s *String) Inspect() string {
	return strconv.Quote(string(s.buf))
}

func (s *String) String() string {
	return string(s.buf)
}

func (s *String) Interface() any {
	return string(s.buf)
}

// Equals compares buffer contents, not handle identity.
func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	return ok && string(o.buf) == string(s.buf)
}
