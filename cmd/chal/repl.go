package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chal-lang/chal"
	"github.com/chal-lang/chal/ast"
	"github.com/chal-lang/chal/compiler"
	"github.com/chal-lang/chal/errz"
	"github.com/chal-lang/chal/object"
	"github.com/chal-lang/chal/parser"
	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	historyFile = ".chal_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

// replSession evaluates REPL entries one at a time. Every entry runs on a
// fresh machine; function definitions from earlier entries are compiled
// into each new program so they stay callable.
type replSession struct {
	ctx       context.Context
	logger    zerolog.Logger
	opts      []chal.Option
	functions []ast.Node
}

func newReplSession(ctx context.Context, logger zerolog.Logger, opts []chal.Option) *replSession {
	return &replSession{ctx: ctx, logger: logger, opts: opts}
}

// eval runs one entry and returns the value left on top of the stack, or
// nil when the entry leaves the stack empty.
func (s *replSession) eval(input string) (object.Object, error) {
	entry, err := parser.Parse(s.ctx, input)
	if err != nil {
		return nil, err
	}
	nodes := append(append([]ast.Node{}, s.functions...), entry.Nodes...)
	program, err := compiler.Compile(&ast.Compound{Nodes: nodes}, &compiler.Config{
		Source: input,
		Logger: &s.logger,
	})
	if err != nil {
		return nil, err
	}
	machine, err := chal.Run(program, s.opts...)
	if err != nil {
		return nil, err
	}
	for _, node := range entry.Nodes {
		if fn, ok := node.(*ast.Function); ok {
			s.functions = append(s.functions, fn)
		}
	}
	result, _ := machine.TOS()
	return result, nil
}

func newReplCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminalIO() {
				return errors.New("repl requires an interactive terminal")
			}
			logger, err := newLogger(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := getChalOptions(cmd, v)
			if err != nil {
				return err
			}
			return runRepl(cmd, newReplSession(cmd.Context(), logger, opts))
		},
	}
}

func runRepl(cmd *cobra.Command, session *replSession) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "chal %s. Type :quit to exit.\n", version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := homedir.Dir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return nil
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		result, err := session.eval(code)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), red(formatError(err).Error()))
			continue
		}
		if output, _ := getOutput(result, ""); output != "" {
			fmt.Fprintln(out, output)
		}
	}
}

// readByParseProbe keeps prompting while the input so far is an unclosed
// form.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !isIncomplete(src) {
			return src, true
		}
	}
}

func isIncomplete(src string) bool {
	_, err := parser.Parse(context.Background(), src)
	var parseErr *parser.Error
	return errors.As(err, &parseErr) && parseErr.Code == errz.E1002
}
