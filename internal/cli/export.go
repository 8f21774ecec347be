/*
PURPOSE:
  Defines the 'export' subcommand.
  Writes a saved run as CSV or JSON Lines for spreadsheets and scripts.

REQUIREMENTS:
  Implementation-discovered:
  - Format follows -o's extension when --format is not given.

RELATED FILES:
  - internal/output/export.go
*/

package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/output"
	"github.com/daryltucker/dex-bench/internal/store"
)

var (
	exportFormat string
	exportPath   string
)

var exportCmd = &cobra.Command{
	Use:   "export [file-or-id]",
	Short: "Export run results as CSV or JSON Lines",
	Long: `Writes one row per result of the latest (or a given) run.
Without -o the file goes to the results directory as <run id>.csv or <run id>.jsonl.`,
	Example: `  dex-bench export --format csv
  dex-bench export benchmark-2024-01-01T12-00-00-000Z -o results.jsonl`,
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

		run, err := loadRun(cmd.Context(), st, args)
		if err != nil {
			return err
		}

		format, path := exportFormat, exportPath
		if format == "" && path != "" {
			format = output.FormatFromPath(path)
		}
		if format == "" {
			format = output.FormatCSV
		}
		if path == "" {
			path = filepath.Join(cfg.ResultsDir, run.ID+"."+format)
		}

		n, err := output.Export(run, format, path)
		if err != nil {
			return err
		}
		output.NewDisplay(cmd.OutOrStdout()).Success("Exported %d results to %s", n, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv or jsonl (default: from -o extension, else csv)")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file")
}
