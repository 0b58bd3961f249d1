package bytecode

import (
	"testing"

	"github.com/chal-lang/chal/op"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	original := sampleProgram()

	data, err := Marshal(original)
	require.Nil(t, err)

	restored, err := Unmarshal(data)
	require.Nil(t, err)

	require.Equal(t, original.ID(), restored.ID())
	require.Equal(t, original.Source(), restored.Source())
	require.Equal(t, original.Instructions(), restored.Instructions())
	require.Equal(t, original.Functions(), restored.Functions())
	require.Equal(t, original.Location(0), restored.Location(0))
	require.Equal(t, original.Index(), restored.Index())
}

func TestMarshalIsDeterministic(t *testing.T) {
	p := sampleProgram()
	a, err := Marshal(p)
	require.Nil(t, err)
	b, err := Marshal(p)
	require.Nil(t, err)
	require.Equal(t, a, b)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not cbor"))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "bytecode: unmarshal program")
}

func TestUnmarshalVerifies(t *testing.T) {
	broken := NewProgram(ProgramParams{Instructions: []Instruction{{Op: op.Jmp, Label: 4}}})
	data, err := Marshal(broken)
	require.Nil(t, err)
	_, err = Unmarshal(data)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "JMP targets unknown label .L4")
}

func TestUnmarshalVersion(t *testing.T) {
	data, err := cborEncMode.Marshal(programState{Version: 99})
	require.Nil(t, err)
	_, err = Unmarshal(data)
	require.NotNil(t, err)
	require.Equal(t, "bytecode: unsupported format version 99 (expected 1)", err.Error())
}
