/*
PURPOSE:
  Defines the 'markdown' (md) subcommand: regenerates <results_dir>/<run id>.md.

RELATED FILES:
  - internal/output/markdown.go
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/output"
	"github.com/daryltucker/dex-bench/internal/store"
)

var markdownCmd = &cobra.Command{
	Use:     "markdown [file-or-id]",
	Aliases: []string{"md"},
	Short:   "Write the markdown report for the latest (or a given) run",
	Args:    cobra.MaximumNArgs(1),
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

		run, err := loadRun(cmd.Context(), st, args)
		if err != nil {
			return err
		}
		path, err := output.SaveMarkdown(run, cfg.ResultsDir)
		if err != nil {
			return err
		}
		output.NewDisplay(cmd.OutOrStdout()).Success("Markdown report saved to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markdownCmd)
}
