/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the benchmark matrix, resuming the newest incomplete run by default.

REQUIREMENTS:
  User-specified:
  - Run the benchmarks; select categories.
  - Resume an interrupted run unless --fresh.
  - Flags for concurrency and retries.

  Implementation-discovered:
  - Need to load config first, then apply flag overrides.
  - Ctrl-C must leave the run resumable, so cancellation goes through the context.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner.Run()
  - Uses: internal/config, internal/docs, internal/llm, internal/benchmark, internal/store, internal/output

ERROR HANDLING:
  - Returns error if config, documents or store fail, or the run is interrupted.
  - Per-task failures do not fail the command; they show up in the report.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Validate -> Resume check -> Runner.Run -> Report.

USAGE:
  dex-bench run --category summarization --concurrency 4

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/daryltucker/dex-bench/internal/benchmark"
	"github.com/daryltucker/dex-bench/internal/config"
	"github.com/daryltucker/dex-bench/internal/docs"
	"github.com/daryltucker/dex-bench/internal/engine"
	"github.com/daryltucker/dex-bench/internal/llm"
	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
	"github.com/daryltucker/dex-bench/internal/store"
)

var (
	categoryFlags       []string
	allCategories       bool
	freshRun            bool
	concurrencyOverride int
	retriesOverride     int
	modelsOverride      []string
	docsDirOverride     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark suite",
	Long: `Runs every configured model against every document for each selected category.

The run is saved after every task. If an in-progress run exists it is resumed
and tasks that already have a result are skipped; pass --fresh to start over.
Failed tasks are retried (--retries) and then recorded as failures.

When the run completes, results are printed and a markdown report is written
to the results directory.`,
	Example: `  # Run all categories (resumes an interrupted run if there is one)
  dex-bench run

  # Only summarization, four tasks at a time
  dex-bench run --category summarization --concurrency 4

  # Start a new run even if one is in progress
  dex-bench run --fresh --retries 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		documents, err := docs.Load(cfg.DocsDir)
		if err != nil {
			return err
		}
		if len(documents) == 0 {
			return errors.WithHintf(errors.Newf("no documents found in %s", cfg.DocsDir),
				"add %s files to %s", docs.Pattern, cfg.DocsDir)
		}

		registry := benchmark.NewDefaultRegistry(llm.New(cfg))
		categories, err := selectedCategories(registry)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		display := output.NewDisplay(cmd.OutOrStdout())

		var resume *model.Run
		if !freshRun {
			resume, err = st.LoadIncomplete(ctx)
			if err != nil {
				return err
			}
		}
		if resume != nil {
			cats := resume.Categories
			if len(categories) > 0 {
				cats = engine.UnionCategories(resume.Categories, categories)
			}
			display.ResumeBanner(resume,
				engine.CountCompletedRuns(resume),
				engine.CountTotalRuns(cats, len(resume.Models), len(resume.Documents)))
		}

		runner := &engine.Runner{
			Registry:  registry,
			Store:     st,
			Models:    cfg.Models,
			Documents: documents,
			Logger:    output.Logger,
		}
		run, err := runner.Run(ctx, engine.Options{
			Categories:  categories,
			ResumeFrom:  resume,
			Concurrency: cfg.Concurrency,
			Retries:     cfg.Retries,
			RetryDelay:  cfg.RetryDelay,
			OnProgress: func(p engine.Progress) {
				display.Progress(p.Task.Category, p.Task.Model, p.Task.Document.Name, p.Completed, p.Total, p.Result.Success)
			},
			OnRetry: func(e engine.RetryEvent) {
				display.Retry(e.Task.Model, e.Task.Document.Name, e.Attempt, e.Retries, e.Err)
			},
		})
		if err != nil {
			if run != nil && errors.Is(err, context.Canceled) {
				display.Warning("Interrupted with %d results saved. Run again to resume %s.", run.CompletedCount(), run.ID)
				return errors.Wrap(err, "benchmark interrupted")
			}
			return err
		}

		if err := display.Results(run); err != nil {
			return err
		}
		path, err := output.SaveMarkdown(run, cfg.ResultsDir)
		if err != nil {
			return err
		}
		display.Success("Markdown report saved to %s", path)
		return nil
	},
}

func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = concurrencyOverride
	}
	if cmd.Flags().Changed("retries") {
		cfg.Retries = retriesOverride
	}
	if len(modelsOverride) > 0 {
		cfg.Models = modelsOverride
	}
	if docsDirOverride != "" {
		cfg.DocsDir = docsDirOverride
	}
}

// selectedCategories validates --category flags. nil means the runner default.
func selectedCategories(registry *benchmark.Registry) ([]model.Category, error) {
	if allCategories {
		if len(categoryFlags) > 0 {
			return nil, errors.New("--all and --category are mutually exclusive")
		}
		return registry.Categories(), nil
	}
	if len(categoryFlags) == 0 {
		return nil, nil
	}
	categories := make([]model.Category, 0, len(categoryFlags))
	for _, c := range categoryFlags {
		categories = append(categories, model.Category(c))
	}
	if err := registry.Validate(categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&categoryFlags, "category", "c", nil, "Category to run (repeatable): summarization, structured-output")
	runCmd.Flags().BoolVar(&allCategories, "all", false, "Run every registered category")
	runCmd.Flags().BoolVar(&freshRun, "fresh", false, "Start a new run instead of resuming an incomplete one")
	runCmd.Flags().IntVarP(&concurrencyOverride, "concurrency", "j", 1, "Maximum number of tasks running at once")
	runCmd.Flags().IntVarP(&retriesOverride, "retries", "r", 3, "Retries per task before it is recorded as failed")
	runCmd.Flags().StringSliceVar(&modelsOverride, "models", nil, "Comma-separated list of models (overrides config)")
	runCmd.Flags().StringVar(&docsDirOverride, "docs-dir", "", "Directory containing the *.md documents")
}
