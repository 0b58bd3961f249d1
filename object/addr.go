package object

import "fmt"

// Addr is an absolute instruction offset. Source programs cannot construct
// one; the virtual machine uses it to record return addresses.
type Addr struct {
	offset int
}

func NewAddr(offset int) *Addr {
	return &Addr{offset: offset}
}

func (a *Addr) Type() Type {
	return ADDR
}

func (a *Addr) Offset() int {
	return a.offset
}

func (a *Addr) Inspect() string {
	return fmt.Sprintf("addr(%d)", a.offset)
}

func (a *Addr) String() string {
	return a.Inspect()
}

func (a *Addr) Interface() any {
	return a.offset
}

func (a *Addr) Equals(other Object) bool {
	o, ok := other.(*Addr)
	return ok && o.offset == a.offset
}
