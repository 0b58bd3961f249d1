package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chal-lang/chal/bytecode"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBuildCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a source file to a .chalc bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.HasSuffix(args[0], bytecodeExt) {
				return fmt.Errorf("%s is already compiled", args[0])
			}
			program, err := loadProgram(cmd, v, args)
			if err != nil {
				return formatError(err)
			}
			data, err := bytecode.Marshal(program)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + bytecodeExt
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d instructions)\n", out, program.InstructionCount())
			return nil
		},
	}
	cmd.Flags().StringP("out", "O", "", "output path (default: input with a .chalc extension)")
	return cmd
}
