package bytecode

import (
	"fmt"

	"github.com/chal-lang/chal/op"
	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

// FormatVersion is the version of the serialized program format.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Serialization types

type programState struct {
	Version      int                `cbor:"version"`
	ID           string             `cbor:"id"`
	Source       string             `cbor:"source,omitempty"`
	Instructions []instructionState `cbor:"instructions"`
	Functions    []functionState    `cbor:"functions,omitempty"`
	Locations    []locationState    `cbor:"locations,omitempty"`
}

type instructionState struct {
	Op    uint16  `cbor:"op"`
	Num   float64 `cbor:"num"`
	Str   string  `cbor:"str,omitempty"`
	Local uint32  `cbor:"local,omitempty"`
	Label uint32  `cbor:"label,omitempty"`
	Argc  int     `cbor:"argc,omitempty"`
}

type functionState struct {
	Name   string   `cbor:"name"`
	Label  uint32   `cbor:"label"`
	Params []uint32 `cbor:"params,omitempty"`
	Locals []uint32 `cbor:"locals,omitempty"`
}

type locationState struct {
	Line   int `cbor:"line"`
	Column int `cbor:"column"`
}

// Marshal serializes a Program to CBOR bytes.
func Marshal(p *Program) ([]byte, error) {
	state := programState{
		Version:      FormatVersion,
		ID:           p.id.String(),
		Source:       p.source,
		Instructions: make([]instructionState, len(p.instructions)),
	}
	for i, instr := range p.instructions {
		state.Instructions[i] = instructionState{
			Op:    uint16(instr.Op),
			Num:   instr.Num,
			Str:   instr.Str,
			Local: uint32(instr.Local),
			Label: uint32(instr.Label),
			Argc:  instr.Argc,
		}
	}
	for _, fn := range p.Functions() {
		state.Functions = append(state.Functions, functionState{
			Name:   fn.Name,
			Label:  uint32(fn.Label),
			Params: localsToState(fn.Params),
			Locals: localsToState(fn.Locals),
		})
	}
	for _, loc := range p.locations {
		state.Locations = append(state.Locations, locationState{Line: loc.Line, Column: loc.Column})
	}
	return cborEncMode.Marshal(state)
}

// Unmarshal deserializes a Program from CBOR bytes and verifies it.
func Unmarshal(data []byte) (*Program, error) {
	var state programState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if state.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d (expected %d)",
			state.Version, FormatVersion)
	}
	id, err := uuid.FromString(state.ID)
	if err != nil {
		return nil, fmt.Errorf("bytecode: invalid program id: %w", err)
	}
	params := ProgramParams{
		ID:           id,
		Source:       state.Source,
		Instructions: make([]Instruction, len(state.Instructions)),
	}
	for i, instr := range state.Instructions {
		params.Instructions[i] = Instruction{
			Op:    op.Code(instr.Op),
			Num:   instr.Num,
			Str:   instr.Str,
			Local: Local(instr.Local),
			Label: Label(instr.Label),
			Argc:  instr.Argc,
		}
	}
	for _, fn := range state.Functions {
		params.Functions = append(params.Functions, Function{
			Name:   fn.Name,
			Label:  Label(fn.Label),
			Params: localsFromState(fn.Params),
			Locals: localsFromState(fn.Locals),
		})
	}
	for _, loc := range state.Locations {
		params.Locations = append(params.Locations, SourceLocation{Line: loc.Line, Column: loc.Column})
	}
	program := NewProgram(params)
	if err := program.Verify(); err != nil {
		return nil, fmt.Errorf("bytecode: invalid program: %w", err)
	}
	return program, nil
}

func localsToState(locals []Local) []uint32 {
	if len(locals) == 0 {
		return nil
	}
	out := make([]uint32, len(locals))
	for i, l := range locals {
		out[i] = uint32(l)
	}
	return out
}

func localsFromState(locals []uint32) []Local {
	if len(locals) == 0 {
		return nil
	}
	out := make([]Local, len(locals))
	for i, l := range locals {
		out[i] = Local(l)
	}
	return out
}
