package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// formatError renders compile and runtime faults as a compiler-style
// report with the offending source line.
func formatError(err error) error {
	var formattable interface {
		ToFormatted() *errz.FormattedError
	}
	if errors.As(err, &formattable) {
		formatter := errz.NewFormatter(!color.NoColor)
		return errors.New(strings.TrimRight(formatter.Format(formattable.ToFormatted()), "\n"))
	}
	return err
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutput(result object.Object, format string) (string, error) {
	switch strings.ToLower(format) {
	case "":
		// Without a format, print nothing for null and the inspected
		// value for everything else.
		if result == nil || result == object.Null {
			return "", nil
		}
		return result.Inspect(), nil
	case "json":
		output, err := getOutputJSON(result.Interface())
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		return object.PrintableValue(result), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(value any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(value, "", "  ")
	}
	return prettyjson.Marshal(value)
}
