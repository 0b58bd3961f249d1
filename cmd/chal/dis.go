package main

import (
	"fmt"
	"strings"

	"github.com/chal-lang/chal/dis"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDisCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(cmd, v, args)
			if err != nil {
				return formatError(err)
			}
			format, _ := cmd.Flags().GetString("output")
			w := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "", "table":
				return dis.Print(dis.Disassemble(program), w)
			case "json":
				return dis.NewListing(program).WriteJSON(w, !color.NoColor)
			case "yaml":
				return dis.NewListing(program).WriteYAML(w)
			default:
				return fmt.Errorf("unknown output format: %s", format)
			}
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("output", "o", "table", "output format: table, json or yaml")
	cobra.CheckErr(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp)))
	return cmd
}
