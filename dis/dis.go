// Package dis supports analysis of chal bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and the label
// index of a `bytecode.Program`.
package dis

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/chal-lang/chal/bytecode"
	"github.com/chal-lang/chal/internal/table"
	"github.com/chal-lang/chal/op"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"gopkg.in/yaml.v3"
)

// Instruction represents a single bytecode instruction and its operand.
type Instruction struct {
	Offset     int     `json:"offset" yaml:"offset"`
	Name       string  `json:"opcode" yaml:"opcode"`
	Opcode     op.Code `json:"-" yaml:"-"`
	Operand    string  `json:"operand,omitempty" yaml:"operand,omitempty"`
	Annotation string  `json:"info,omitempty" yaml:"info,omitempty"`
	Constant   any     `json:"constant,omitempty" yaml:"constant,omitempty"`
	Line       int     `json:"line,omitempty" yaml:"line,omitempty"`
}

// Disassemble returns a parsed representation of the given program.
// Function entry labels and call sites are annotated with the function
// name, and jumps with the offset they resume at.
func Disassemble(program *bytecode.Program) []Instruction {
	index := program.Index()
	instructions := make([]Instruction, 0, program.InstructionCount())
	for offset := 0; offset < program.InstructionCount(); offset++ {
		instr := program.Instruction(offset)
		var constant any
		var annotation string
		switch {
		case instr.Op == op.LdNum:
			constant = instr.Num
		case instr.Op == op.LdStr:
			constant = instr.Str
		case instr.Op == op.Label:
			if fn, ok := program.Function(instr.Label); ok {
				annotation = fmt.Sprintf("func %s/%d", fn.Name, fn.Arity())
			}
		case instr.Op == op.Call:
			if fn, ok := program.Function(instr.Label); ok {
				annotation = fn.Name
			} else {
				annotation = "unknown function"
			}
		case instr.Op == op.CallName, instr.Op == op.LdBuiltin:
			annotation = "builtin"
		case instr.Op.IsJump():
			if target, ok := index[instr.Label]; ok {
				annotation = "-> " + strconv.Itoa(target)
			} else {
				annotation = "unknown label"
			}
		}
		instructions = append(instructions, Instruction{
			Offset:     offset,
			Name:       op.GetInfo(instr.Op).Name,
			Opcode:     instr.Op,
			Operand:    instr.OperandString(),
			Annotation: annotation,
			Constant:   constant,
			Line:       program.Location(offset).Line,
		})
	}
	return instructions
}

var (
	colorOpcode   = color.New(color.Bold)
	colorNumber   = color.New(color.FgYellow)
	colorString   = color.New(color.FgGreen)
	colorLabel    = color.New(color.FgMagenta)
	colorAnnotate = color.New(color.FgHiCyan)
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) error {
	var lines [][]string
	for _, instr := range instructions {
		var line string
		if instr.Line > 0 {
			line = strconv.Itoa(instr.Line)
		}
		operand := instr.Operand
		switch c := instr.Constant.(type) {
		case float64:
			operand = colorNumber.Sprint(operand)
		case string:
			if len(c) > 40 {
				operand = strconv.Quote(c[:37] + "...")
			}
			operand = colorString.Sprint(operand)
		default:
			if instr.Opcode == op.Label {
				operand = colorLabel.Sprint(operand)
			}
		}
		var info string
		if instr.Annotation != "" {
			info = colorAnnotate.Sprint(instr.Annotation)
		}
		lines = append(lines, []string{
			strconv.Itoa(instr.Offset),
			line,
			colorOpcode.Sprint(instr.Name),
			operand,
			info,
		})
	}

	return table.NewTable(writer).
		WithHeader([]string{"OFFSET", "LINE", "OPCODE", "OPERAND", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// Function describes one compiled function in a Listing.
type Function struct {
	Name   string   `json:"name" yaml:"name"`
	Label  string   `json:"label" yaml:"label"`
	Offset int      `json:"offset" yaml:"offset"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
	Locals []string `json:"locals,omitempty" yaml:"locals,omitempty"`
}

// Listing is the structured form of a disassembled program, used for the
// json and yaml output formats.
type Listing struct {
	Program      string        `json:"program" yaml:"program"`
	Source       string        `json:"source,omitempty" yaml:"source,omitempty"`
	Functions    []Function    `json:"functions,omitempty" yaml:"functions,omitempty"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
}

// NewListing disassembles the program into a Listing.
func NewListing(program *bytecode.Program) *Listing {
	index := program.Index()
	listing := &Listing{
		Program:      program.ID().String(),
		Source:       program.Source(),
		Instructions: Disassemble(program),
	}
	for _, fn := range program.Functions() {
		listing.Functions = append(listing.Functions, Function{
			Name:   fn.Name,
			Label:  fn.Label.String(),
			Offset: index[fn.Label],
			Params: localNames(fn.Params),
			Locals: localNames(fn.Locals),
		})
	}
	return listing
}

func localNames(locals []bytecode.Local) []string {
	if len(locals) == 0 {
		return nil
	}
	names := make([]string, len(locals))
	for i, l := range locals {
		names[i] = l.String()
	}
	return names
}

// WriteJSON writes the listing as indented JSON, colorized when colored is
// true.
func (l *Listing) WriteJSON(w io.Writer, colored bool) error {
	var data []byte
	var err error
	if colored {
		data, err = prettyjson.Marshal(l)
	} else {
		data, err = json.MarshalIndent(l, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteYAML writes the listing as a YAML document.
func (l *Listing) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}
	return enc.Close()
}
