/*
PURPOSE:
  Terminal rendering for dex-bench: progress lines, retry notices, the resume
  banner and the end-of-run results tables.

REQUIREMENTS:
  User-specified:
  - "[i/total] [SUM|JSON] Running <model> on <document>" progress lines.
  - Results table and statistics per category after a run.

  Implementation-discovered:
  - Colors must switch off when stdout is not a terminal (CI logs, pipes).

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: pterm for styling and tables, x/term for TTY detection

ERROR HANDLING:
  - Table rendering errors are returned to the caller.

USAGE:
  d := output.NewDisplay(os.Stdout)
  d.Progress(task.Category, task.Model, task.Document.Name, 3, 8, true)

RELATED FILES:
  - internal/output/markdown.go
  - internal/cli/run.go
*/

package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/daryltucker/dex-bench/internal/model"
)

// Display writes human-oriented output to Out.
type Display struct {
	Out io.Writer
}

// NewDisplay returns a Display on w. Colors are disabled unless w is a terminal.
func NewDisplay(w io.Writer) *Display {
	if !IsTerminal(w) {
		pterm.DisableColor()
	}
	return &Display{Out: w}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Progress prints one progress line for a committed task.
func (d *Display) Progress(c model.Category, modelName, document string, completed, total int, success bool) {
	mark := pterm.Green("✓")
	if !success {
		mark = pterm.Red("✗")
	}
	fmt.Fprintf(d.Out, "%s %s Running %s on %s %s\n",
		pterm.Cyan(fmt.Sprintf("[%d/%d]", completed, total)),
		pterm.Magenta("["+CategoryLabel(c)+"]"),
		pterm.Yellow(model.ShortModel(modelName)),
		pterm.Gray(document),
		mark)
}

// Retry prints a retry notice under the task's progress line.
func (d *Display) Retry(modelName, document string, attempt, retries int, err error) {
	fmt.Fprintln(d.Out, pterm.Yellow(fmt.Sprintf("  ↳ Retry %d/%d for %s on %s: %v",
		attempt, retries, model.ShortModel(modelName), document, err)))
}

// ResumeBanner announces that an in-progress run is being continued.
func (d *Display) ResumeBanner(run *model.Run, completed, total int) {
	pterm.Info.WithWriter(d.Out).Printfln("Resuming run %s", run.ID)
	fmt.Fprintf(d.Out, "  Progress: %d/%d results completed\n", completed, total)
	fmt.Fprintf(d.Out, "  Started:  %s\n\n", run.Timestamp.Local().Format("2006-01-02 15:04:05"))
}

// Info prints an informational line.
func (d *Display) Info(format string, args ...any) {
	pterm.Info.WithWriter(d.Out).Printfln(format, args...)
}

// Success prints a success line.
func (d *Display) Success(format string, args ...any) {
	pterm.Success.WithWriter(d.Out).Printfln(format, args...)
}

// Warning prints a warning line.
func (d *Display) Warning(format string, args ...any) {
	pterm.Warning.WithWriter(d.Out).Printfln(format, args...)
}

// Results prints the header, a table per category and its statistics.
func (d *Display) Results(run *model.Run) error {
	fmt.Fprintln(d.Out)
	fmt.Fprintf(d.Out, "%s %s (%s)\n", pterm.Bold.Sprint("Run"), run.ID, run.Status)
	fmt.Fprintf(d.Out, "Models: %d  Documents: %d  Results: %d\n",
		len(run.Models), len(run.Documents), run.CompletedCount())

	for _, c := range run.Categories {
		results := run.Results[c]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(d.Out, "\n%s\n\n", pterm.Cyan("─── "+sectionTitle(c)+" ───"))
		if err := d.table(c, results); err != nil {
			return err
		}
		if stats, ok := run.Stats[c]; ok {
			d.stats(stats)
		}
	}
	return nil
}

func (d *Display) table(c model.Category, results []model.Result) error {
	var data pterm.TableData
	switch c {
	case model.CategorySummarization:
		data = pterm.TableData{{"Model", "Document", "Time", "Tokens", "Tok/s", "Status"}}
		for _, r := range results {
			tokens, tps := "-", "-"
			if p := r.Summarization; p != nil {
				tokens, tps = Count(p.TotalTokens), Rate(p.TokensPerSecond)
			}
			data = append(data, []string{model.ShortModel(r.Model), ShortDocument(r.Document), FormatMs(r.DurationMs), tokens, tps, statusMark(r)})
		}
	case model.CategoryStructuredOutput:
		data = pterm.TableData{{"Model", "Document", "Time", "Entities", "Rels", "Types", "Status"}}
		for _, r := range results {
			ex, rel, types := "-", "-", "-"
			if p := r.StructuredOutput; p != nil {
				ex, rel, types = Count(p.ExtractionCount), Count(p.RelationshipCount), Count(len(p.EntityTypes))
			}
			data = append(data, []string{model.ShortModel(r.Model), ShortDocument(r.Document), FormatMs(r.DurationMs), ex, rel, types, statusMark(r)})
		}
	default:
		data = pterm.TableData{{"Model", "Document", "Time", "Status"}}
		for _, r := range results {
			data = append(data, []string{model.ShortModel(r.Model), ShortDocument(r.Document), FormatMs(r.DurationMs), statusMark(r)})
		}
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(d.Out).Render()
}

func (d *Display) stats(s model.Stats) {
	fmt.Fprintln(d.Out)
	fmt.Fprintf(d.Out, "%s   %s\n", pterm.Gray("Total Duration:"), FormatMs(s.TotalDurationMs))
	fmt.Fprintf(d.Out, "%s %s\n", pterm.Gray("Average Duration:"), FormatMs(s.AverageDurationMs))
	if p := s.Summarization; p != nil {
		fmt.Fprintf(d.Out, "%s        %s\n", pterm.Gray("Avg Tok/s:"), Rate(p.AverageTokensPerSecond))
	}
	if p := s.StructuredOutput; p != nil {
		fmt.Fprintf(d.Out, "%s  %s\n", pterm.Gray("Total Extractions:"), Count(p.TotalExtractions))
		fmt.Fprintf(d.Out, "%s %s\n", pterm.Gray("Total Relationships:"), Count(p.TotalRelationships))
		fmt.Fprintf(d.Out, "%s %.1f\n", pterm.Gray("Avg Extractions/Doc:"), p.AverageExtractionsPerDoc)
	}
	if f := s.FastestResult; f.Model != "" {
		fmt.Fprintf(d.Out, "%s %s on %s (%s)\n", pterm.Green("⚡ Fastest:"), model.ShortModel(f.Model), f.Document, FormatMs(f.DurationMs))
	}
	if sl := s.SlowestResult; sl.Model != "" {
		fmt.Fprintf(d.Out, "%s %s on %s (%s)\n", pterm.Red("🐢 Slowest:"), model.ShortModel(sl.Model), sl.Document, FormatMs(sl.DurationMs))
	}

	if len(s.ModelAverages) > 0 {
		fmt.Fprintln(d.Out)
		fmt.Fprintln(d.Out, pterm.Gray("Model averages:"))
		for _, m := range sortedAverages(s.ModelAverages) {
			fmt.Fprintf(d.Out, "  %-32s %s\n", model.ShortModel(m), FormatAverage(s.ModelAverages[m]))
		}
	}
}

// Runs lists runs as a table, newest first.
func (d *Display) Runs(runs []*model.Run) error {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	data := pterm.TableData{{"Run", "Status", "Models", "Documents", "Results"}}
	for _, r := range runs {
		data = append(data, []string{r.ID, string(r.Status), Count(len(r.Models)), Count(len(r.Documents)), Count(r.CompletedCount())})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(d.Out).Render()
}

func statusMark(r model.Result) string {
	if r.Success {
		return pterm.Green("✓")
	}
	return pterm.Red("✗")
}
