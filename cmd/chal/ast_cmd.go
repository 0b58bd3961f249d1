package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chal-lang/chal/ast"
	"github.com/chal-lang/chal/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// astNode is the YAML shape of a syntax tree node.
type astNode struct {
	Kind     string    `yaml:"kind"`
	Pos      string    `yaml:"pos,omitempty"`
	Name     string    `yaml:"name,omitempty"`
	Op       string    `yaml:"op,omitempty"`
	Value    string    `yaml:"value,omitempty"`
	Params   []string  `yaml:"params,omitempty"`
	Children []astNode `yaml:"children,omitempty"`
}

func newAstNode(node ast.Node) astNode {
	pos := node.Pos()
	out := astNode{
		Kind: strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast."),
		Pos:  fmt.Sprintf("%d:%d", pos.LineNumber(), pos.ColumnNumber()),
	}
	switch n := node.(type) {
	case *ast.Number:
		out.Value = n.Literal
	case *ast.String:
		out.Value = strconv.Quote(n.Value)
	case *ast.Bool:
		out.Value = strconv.FormatBool(n.Value)
	case *ast.RefVar:
		out.Name = n.Name
	case *ast.RefParam:
		out.Name = n.Name
	case *ast.Define:
		out.Name = n.Name
	case *ast.Assign:
		out.Name = n.Name
	case *ast.Unary:
		out.Op = n.Op.String()
	case *ast.Binary:
		out.Op = n.Op.String()
	case *ast.Function:
		out.Name = n.Name
		out.Params = n.Params
	case *ast.Call:
		out.Name = n.Name
	case *ast.Import:
		out.Name = n.Name
	}
	for _, child := range ast.Children(node) {
		out.Children = append(out.Children, newAstNode(child))
	}
	return out
}

func newAstCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Display the syntax tree of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var opts []parser.Option
			if name != "" {
				opts = append(opts, parser.WithFilename(name))
			}
			program, err := parser.Parse(cmd.Context(), string(data), opts...)
			if err != nil {
				return formatError(err)
			}
			format, _ := cmd.Flags().GetString("output")
			switch strings.ToLower(format) {
			case "", "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(newAstNode(program)); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				for _, node := range program.Nodes {
					fmt.Fprintln(cmd.OutOrStdout(), node.String())
				}
				return nil
			default:
				return fmt.Errorf("unknown output format: %s", format)
			}
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("output", "o", "yaml", "output format: yaml or text")
	return cmd
}
