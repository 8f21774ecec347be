/*
PURPOSE:
  Defines the 'results' subcommand: print a saved run, or list completed runs.

USAGE:
  dex-bench results [file-or-id]
  dex-bench results --list

RELATED FILES:
  - internal/output/display.go
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/output"
	"github.com/daryltucker/dex-bench/internal/store"
)

var listRuns bool

var resultsCmd = &cobra.Command{
	Use:   "results [file-or-id]",
	Short: "Show the results of the latest (or a given) run",
	Example: `  dex-bench results
  dex-bench results benchmark-2024-01-01T12-00-00-000Z
  dex-bench results ./results/benchmark-2024-01-01T12-00-00-000Z.json
  dex-bench results --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		display := output.NewDisplay(cmd.OutOrStdout())
		if listRuns {
			runs, err := st.ListCompleted(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				display.Info("No completed runs in %s", cfg.ResultsDir)
				return nil
			}
			return display.Runs(runs)
		}

		run, err := loadRun(cmd.Context(), st, args)
		if err != nil {
			return err
		}
		return display.Results(run)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().BoolVar(&listRuns, "list", false, "List completed runs instead of showing one")
}
