/*
PURPOSE:
  Defines the 'categories' subcommand: lists what --category accepts.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/benchmark"
	"github.com/daryltucker/dex-bench/internal/output"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the registered benchmark categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The generator is never called here; listing needs no gateway.
		registry := benchmark.NewDefaultRegistry(nil)
		out := cmd.OutOrStdout()
		for _, b := range registry.Benchmarks() {
			fmt.Fprintf(out, "%-20s [%s] %s: %s\n", b.ID(), output.CategoryLabel(b.ID()), b.Name(), b.Description())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
