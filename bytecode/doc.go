// Package bytecode defines the compiled form of a program: a flat,
// immutable sequence of instructions plus the metadata the virtual machine
// needs to run it.
//
// Jump and call targets are symbolic. A Label instruction marks a position
// and Index resolves each label to the offset of the instruction that
// follows its marker.
package bytecode
