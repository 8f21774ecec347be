/*
PURPOSE:
  Defines the root Cobra command for the dex-bench CLI.
  Handles global flags and shared config/store setup.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Logging is configured once the config is loaded, so every command calls loadConfig first.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/dex-bench/main.go
  - Calls: Child commands (run, results, markdown, export, list-models, categories)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init() and apply them in loadConfig().

RELATED FILES:
  - cmd/dex-bench/main.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/config"
	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
	"github.com/daryltucker/dex-bench/internal/store"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile  string
	logLevel string
	logJSON  bool

	rootCmd = &cobra.Command{
		Use:   "dex-bench",
		Short: "Benchmark LLMs on summarization and structured output",
		Long: `dex-bench runs every configured model against every document in the docs
directory for each benchmark category, saving progress after every task so an
interrupted run can be resumed. Use 'run --help' for benchmark options.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dex-bench.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// loadConfig loads the config file and environment, applies global flag
// overrides and configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = logJSON
	}
	output.Configure(os.Stderr, cfg.LogLevel, cfg.LogJSON)
	return cfg, nil
}

// loadRun returns the run named by args[0], or the latest run.
func loadRun(ctx context.Context, st store.Store, args []string) (*model.Run, error) {
	if len(args) > 0 {
		return st.Load(ctx, args[0])
	}
	run, err := st.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, errors.WithHint(errors.Wrap(store.ErrNotFound, "no benchmark runs found"),
			"start one with 'dex-bench run'")
	}
	return run, nil
}
