// Package object provides the runtime values manipulated by the virtual
// machine.
//
// There are exactly six kinds of value: Null, Bool, Number, String, Addr
// and Builtin. Values are usually type switched on:
//
//	switch obj := obj.(type) {
//	case *object.Number:
//		// do something with obj.Value()
//	case *object.String:
//		// do something with obj.Value()
//	}
package object

// Type of an object as a string.
type Type string

// Type constants
const (
	NULL    Type = "null"
	BOOL    Type = "bool"
	NUMBER  Type = "number"
	STRING  Type = "string"
	ADDR    Type = "addr"
	BUILTIN Type = "builtin"
)

// Object is the interface implemented by every runtime value.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() any

	// Equals returns true if the given object is equal to this object.
	// Objects of different types are never equal.
	Equals(other Object) bool
}

// Equals reports whether a and b are the same kind of value with equal
// contents. Builtin handles are never equal to anything.
func Equals(a, b Object) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equals(b)
}

// Compare orders two values. Only pairs of Numbers are ordered; for every
// other pairing, and for NaN, ok is false.
func Compare(a, b Object) (cmp int, ok bool) {
	x, isNum := a.(*Number)
	if !isNum {
		return 0, false
	}
	y, isNum := b.(*Number)
	if !isNum {
		return 0, false
	}
	switch {
	case x.value < y.value:
		return -1, true
	case x.value > y.value:
		return 1, true
	case x.value == y.value:
		return 0, true
	}
	return 0, false
}

// PrintableValue returns the text written by print-like builtins. Strings
// print without quotes, everything else prints as Inspect would.
func PrintableValue(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.Value()
	}
	if obj == nil {
		return Null.Inspect()
	}
	return obj.Inspect()
}
