package main

import (
	"fmt"
	"time"

	"github.com/chal-lang/chal"
	"github.com/chal-lang/chal/object"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output format: json or text")
	cobra.CheckErr(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp)))
}

const stackGrowthNote = `Values produced by top-level statements and by builtin calls such as
print stay on the operand stack until the program ends. A long
straight-line script, or a function that prints and recurses deeply, can
therefore fail with "stack overflow". Raise --stack-size if that happens.`

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a source file or a compiled .chalc file",
		Long:  "Run a source file or a compiled .chalc file.\n\n" + stackGrowthNote,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(cmd, v, args)
			if err != nil {
				return formatError(err)
			}
			opts, err := getChalOptions(cmd, v)
			if err != nil {
				return err
			}

			start := time.Now()
			machine, err := chal.Run(program, opts...)
			if err != nil {
				return formatError(err)
			}
			dt := time.Since(start)

			result := object.Object(object.Null)
			if tos, ok := machine.TOS(); ok {
				result = tos
			}
			if err := printResult(cmd, result); err != nil {
				return err
			}
			if timing, _ := cmd.Flags().GetBool("timing"); timing {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", dt)
			}
			return nil
		},
	}
	addInputFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().Bool("timing", false, "show execution time")
	return cmd
}

func newEvalCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "eval <expr>",
		Aliases: []string{"e"},
		Short:   "Evaluate an expression and print its value",
		Long:    "Evaluate an expression and print its value.\n\n" + stackGrowthNote,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := getChalOptions(cmd, v)
			if err != nil {
				return err
			}
			result, err := chal.Eval(cmd.Context(), args[0], opts...)
			if err != nil {
				return formatError(err)
			}
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				return nil
			}
			return printResult(cmd, result)
		},
	}
	addOutputFlag(cmd)
	cmd.Flags().BoolP("quiet", "q", false, "suppress output")
	return cmd
}

func printResult(cmd *cobra.Command, result object.Object) error {
	format, _ := cmd.Flags().GetString("output")
	output, err := getOutput(result, format)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	return nil
}
