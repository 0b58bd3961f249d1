package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Compile and verify a program without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(cmd, v, args)
			if err != nil {
				return formatError(err)
			}
			if err := program.Verify(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d instructions, %d functions\n",
				program.InstructionCount(), len(program.Functions()))
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}
