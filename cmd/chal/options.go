package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chal-lang/chal"
	"github.com/chal-lang/chal/bytecode"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// bytecodeExt is the extension of files written by "chal build".
const bytecodeExt = ".chalc"

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "code to use instead of a file")
	cmd.Flags().Bool("stdin", false, "read code from stdin")
}

// newLogger builds the console logger shared by the compiler and the VM.
func newLogger(v *viper.Viper, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", v.GetString("log-level"))
	}
	if v.GetBool("trace") {
		level = zerolog.TraceLevel
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func getChalOptions(cmd *cobra.Command, v *viper.Viper) ([]chal.Option, error) {
	logger, err := newLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return []chal.Option{
		chal.WithLogger(logger),
		chal.WithStackSize(v.GetInt("stack-size")),
		chal.WithMaxCallDepth(v.GetInt("max-call-depth")),
		chal.WithOutput(cmd.OutOrStdout()),
	}, nil
}

// readInput determines what code is to be used. There are three
// possibilities:
//  1. --code <code>
//  2. --stdin (read code from stdin)
//  3. path as args[0]
//
// The returned name is the file path, or empty for the other two.
func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	codeSet := cmd.Flags().Changed("code")
	stdinSet, _ := cmd.Flags().GetBool("stdin")
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeSet, stdinSet, pathSupplied} {
		if set {
			count++
		}
	}
	switch {
	case count > 1:
		return "", nil, errors.New("multiple input sources specified")
	case count == 0:
		return "", nil, errors.New("no input: pass a file, --code or --stdin")
	case stdinSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		return "", data, err
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		return args[0], data, err
	}
	code, _ := cmd.Flags().GetString("code")
	return "", []byte(code), nil
}

// loadProgram compiles the input, or decodes it when it names a bytecode
// file.
func loadProgram(cmd *cobra.Command, v *viper.Viper, args []string) (*bytecode.Program, error) {
	name, data, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, bytecodeExt) {
		program, err := bytecode.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		return program, nil
	}
	opts, err := getChalOptions(cmd, v)
	if err != nil {
		return nil, err
	}
	if name != "" {
		opts = append(opts, chal.WithFilename(name))
	}
	return chal.Compile(cmd.Context(), string(data), opts...)
}
