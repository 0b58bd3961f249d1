package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chal-lang/chal/vm"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "chal",
		Short:         "Compile and run chal programs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./chal.yaml)")
	flags.Int("stack-size", vm.DefaultStackSize, "operand stack capacity")
	flags.Int("max-call-depth", vm.DefaultMaxCallDepth, "maximum depth of nested calls")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("trace", false, "log every executed instruction")
	cobra.CheckErr(v.BindPFlags(flags))

	cmd.AddCommand(
		newRunCmd(v),
		newEvalCmd(v),
		newBuildCmd(v),
		newDisCmd(v),
		newCheckCmd(v),
		newAstCmd(v),
		newReplCmd(v),
		newVersionCmd(),
	)
	return cmd
}

// initConfig layers the config file and CHAL_* environment variables under
// the command line flags.
func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix("chal")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName("chal")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "chal"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	processGlobalFlags(v)
	return nil
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags(v *viper.Viper) {
	if v.GetBool("no-color") {
		color.NoColor = true
	}
}
