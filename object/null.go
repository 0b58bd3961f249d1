package object

// Null is the single null value.
var Null = &NullType{}

type NullType struct{}

func (n *NullType) Type() Type {
	return NULL
}

func (n *NullType) Inspect() string {
	return "null"
}

func (n *NullType) String() string {
	return "null"
}

func (n *NullType) Interface() any {
	return nil
}

func (n *NullType) Equals(other Object) bool {
	_, ok := other.(*NullType)
	return ok
}
