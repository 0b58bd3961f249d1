package bytecode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chal-lang/chal/op"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
)

// MaxArgc is the largest argument count a call instruction may carry.
const MaxArgc = 1 << 16

// Function describes a compiled function. Locals lists every binding the
// function owns (its parameters followed by the variables defined in its
// body, excluding those of nested functions). The virtual machine saves
// and restores these around each call.
type Function struct {
	Name   string
	Label  Label
	Params []Local
	Locals []Local
}

// Arity returns the number of declared parameters.
func (f Function) Arity() int {
	return len(f.Params)
}

// Program is a compiled program. It is immutable after creation and safe
// for concurrent use by multiple virtual machines.
type Program struct {
	id           uuid.UUID
	source       string
	instructions []Instruction
	functions    map[Label]Function
	locations    []SourceLocation
}

// ProgramParams contains parameters for creating a new Program.
type ProgramParams struct {
	ID           uuid.UUID // minted when zero
	Source       string    // file name the program was compiled from
	Instructions []Instruction
	Functions    []Function
	Locations    []SourceLocation // optional, one per instruction
}

// NewProgram creates a new immutable Program from the given parameters.
// Input slices are copied.
func NewProgram(params ProgramParams) *Program {
	id := params.ID
	if id == uuid.Nil {
		id = uuid.Must(uuid.NewV4())
	}
	instructions := make([]Instruction, len(params.Instructions))
	copy(instructions, params.Instructions)

	functions := make(map[Label]Function, len(params.Functions))
	for _, fn := range params.Functions {
		fn.Params = append([]Local(nil), fn.Params...)
		fn.Locals = append([]Local(nil), fn.Locals...)
		functions[fn.Label] = fn
	}

	var locations []SourceLocation
	if len(params.Locations) > 0 {
		locations = make([]SourceLocation, len(instructions))
		copy(locations, params.Locations)
	}

	return &Program{
		id:           id,
		source:       params.Source,
		instructions: instructions,
		functions:    functions,
		locations:    locations,
	}
}

// ID returns the unique identifier minted when the program was compiled.
func (p *Program) ID() uuid.UUID {
	return p.id
}

// Source returns the name of the file the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// InstructionCount returns the number of instructions.
func (p *Program) InstructionCount() int {
	return len(p.instructions)
}

// Instruction returns the instruction at the given offset.
func (p *Program) Instruction(offset int) Instruction {
	return p.instructions[offset]
}

// Instructions returns a copy of the instruction sequence.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.instructions))
	copy(out, p.instructions)
	return out
}

// Function returns the function whose entry is the given label. The
// returned slices must not be modified.
func (p *Program) Function(label Label) (Function, bool) {
	fn, ok := p.functions[label]
	return fn, ok
}

// Functions returns all functions ordered by their position in the program.
func (p *Program) Functions() []Function {
	index := p.Index()
	out := make([]Function, 0, len(p.functions))
	for _, fn := range p.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := index[out[i].Label], index[out[j].Label]
		if a != b {
			return a < b
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Location returns the source location of the instruction at the given
// offset, or the zero location when unknown.
func (p *Program) Location(offset int) SourceLocation {
	if offset < 0 || offset >= len(p.locations) {
		return SourceLocation{}
	}
	return p.locations[offset]
}

// Index scans the program for label markers and returns a map from each
// label to the offset immediately after its marker. When a label is marked
// more than once the last marker wins; Verify reports such programs.
func (p *Program) Index() map[Label]int {
	index := map[Label]int{}
	for offset, instr := range p.instructions {
		if instr.Op == op.Label {
			index[instr.Label] = offset + 1
		}
	}
	return index
}

// Verify statically checks that every opcode is defined, every label is
// marked exactly once, every jump and call targets a marked label and every
// function entry is marked. All problems are reported together.
func (p *Program) Verify() error {
	var result *multierror.Error
	marked := map[Label]int{}
	for offset, instr := range p.instructions {
		if !instr.Op.Valid() {
			result = multierror.Append(result, fmt.Errorf("pc %d: invalid opcode %d", offset, instr.Op))
			continue
		}
		if instr.Op != op.Label {
			continue
		}
		if first, ok := marked[instr.Label]; ok {
			result = multierror.Append(result, fmt.Errorf("pc %d: label %s already marked at pc %d",
				offset, instr.Label, first))
			continue
		}
		marked[instr.Label] = offset
	}
	for offset, instr := range p.instructions {
		if instr.Op.ReferencesLabel() {
			if _, ok := marked[instr.Label]; !ok {
				result = multierror.Append(result, fmt.Errorf("pc %d: %s targets unknown label %s",
					offset, instr.Op, instr.Label))
			}
		}
		if instr.Op == op.Call || instr.Op == op.CallName {
			switch {
			case instr.Argc < 0:
				result = multierror.Append(result, fmt.Errorf("pc %d: negative argument count %d", offset, instr.Argc))
			case instr.Argc > MaxArgc:
				result = multierror.Append(result, fmt.Errorf("pc %d: argument count %d exceeds %d",
					offset, instr.Argc, MaxArgc))
			}
		}
	}
	for _, fn := range p.Functions() {
		if _, ok := marked[fn.Label]; !ok {
			result = multierror.Append(result, fmt.Errorf("function %s: entry label %s is not marked",
				fn.Name, fn.Label))
		}
	}
	return result.ErrorOrNil()
}

func (p *Program) String() string {
	var b strings.Builder
	for offset, instr := range p.instructions {
		fmt.Fprintf(&b, "%04d %s\n", offset, instr)
	}
	return b.String()
}
