package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pypes/loader"
)

var elementsCmd = &cobra.Command{
	Use:   "elements",
	Short: "List the element types that can be used in definitions.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

		fmt.Fprintln(w, "TYPE\tCATEGORY\tDESCRIPTION")

		for _, t := range loader.Builtin().Types() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Type, t.Category, t.Description)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(elementsCmd)
}
