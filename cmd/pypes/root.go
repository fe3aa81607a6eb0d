package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pypes/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pypes",
	Short: "pypes executes flow-based pipelines declared in YAML files.",
	Long: `pypes executes flow-based pipelines declared in YAML files. ` +
		`Each file declares elements and the connections between their ` +
		`ports. Every pipeline runs on its own scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		settings = cfg

		return nil
	},
}

// settings is the runtime configuration loaded before every command.
var settings = config.Default()

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	return 0
}
