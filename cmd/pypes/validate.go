package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pypes/flow"
	"github.com/sarchlab/pypes/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check that pipeline definitions can be built.",
	Long: "`validate` parses each file, checks it against the definition " +
		"schema and builds its pipeline without executing it.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := loader.NewLoader(loader.Builtin(), flow.MakeBuilder())

		failed := 0

		for _, path := range args {
			loaded, err := l.LoadFile(path)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				failed++

				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d elements, %d edges)\n",
				path, len(loaded.Elements), len(loaded.Pipeline.Edges()))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d definitions are invalid", failed, len(args))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
