/*
PURPOSE:
  Defines the 'list-models' subcommand.
  Helps debug gateway connectivity and model naming before a full run.

REQUIREMENTS:
  User-specified:
  - List available models.

  Implementation-discovered:
  - Useful validation step before full run: a configured model the gateway
    does not advertise will fail every task.

ARCHITECTURE INTEGRATION:
  - Calls: internal/llm.Client.ListModels()

ERROR HANDLING:
  - Gateway errors are printed; configured models are still listed.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  dex-bench list-models

RELATED FILES:
  - internal/llm/client.go
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/llm"
	"github.com/daryltucker/dex-bench/internal/output"
)

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List configured models and the models the gateway serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(modelsOverride) > 0 {
			cfg.Models = modelsOverride
		}

		out := cmd.OutOrStdout()
		display := output.NewDisplay(out)

		display.Info("Querying %s...", cfg.BaseURL)
		available, err := llm.New(cfg).ListModels(cmd.Context())
		if err != nil {
			display.Warning("Could not list gateway models: %v", err)
		}
		served := make(map[string]bool, len(available))
		for _, m := range available {
			served[m] = true
		}

		fmt.Fprintln(out, "Configured models:")
		for _, m := range cfg.Models {
			mark := " "
			switch {
			case err != nil:
				mark = "?"
			case served[m]:
				mark = "✓"
			default:
				mark = "✗"
			}
			fmt.Fprintf(out, "  %s %s\n", mark, m)
		}

		if len(available) > 0 {
			fmt.Fprintln(out, "\nGateway models:")
			for _, m := range available {
				fmt.Fprintf(out, "  - %s\n", m)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listModelsCmd)
	listModelsCmd.Flags().StringSliceVar(&modelsOverride, "models", nil, "Comma-separated list of models to check (overrides config)")
}
