/*
PURPOSE:
  Renders a Run as a markdown report (results/<id>.md).

REQUIREMENTS:
  User-specified:
  - Shareable report with per-category results tables and statistics.

  Implementation-discovered:
  - Failed results carry no payload; render their rows with dashes.
  - Summaries and extractions go into collapsible <details> blocks.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run, markdown)
  - Consumes: internal/model.Run

ERROR HANDLING:
  - Rendering never fails; SaveMarkdown returns file errors.

USAGE:
  path, err := output.SaveMarkdown(run, cfg.ResultsDir)

RELATED FILES:
  - internal/output/format.go
*/

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/model"
)

// RenderMarkdown renders the full report for run.
func RenderMarkdown(run *model.Run) string {
	var b strings.Builder

	b.WriteString("# Benchmark Results\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`\n", run.ID)
	fmt.Fprintf(&b, "**Timestamp:** %s\n", run.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Status:** %s\n", run.Status)
	fmt.Fprintf(&b, "**Models:** %d\n", len(run.Models))
	fmt.Fprintf(&b, "**Documents:** %d\n", len(run.Documents))
	categories := make([]string, len(run.Categories))
	for i, c := range run.Categories {
		categories[i] = string(c)
	}
	fmt.Fprintf(&b, "**Categories:** %s\n\n", strings.Join(categories, ", "))

	b.WriteString("## Table of Contents\n\n")
	for _, c := range run.Categories {
		if len(run.Results[c]) == 0 {
			continue
		}
		title := sectionTitle(c)
		fmt.Fprintf(&b, "- [%s](#%s)\n", title, anchor(title))
	}
	b.WriteString("\n")

	for _, c := range run.Categories {
		results := run.Results[c]
		if len(results) == 0 {
			continue
		}
		stats, hasStats := run.Stats[c]
		switch c {
		case model.CategorySummarization:
			writeSummarization(&b, results, stats, hasStats)
		case model.CategoryStructuredOutput:
			writeStructuredOutput(&b, results, stats, hasStats)
		default:
			writeGeneric(&b, c, results, stats, hasStats)
		}
	}
	return b.String()
}

// SaveMarkdown writes the report to <dir>/<run id>.md.
func SaveMarkdown(run *model.Run, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	path := filepath.Join(dir, run.ID+".md")
	if err := os.WriteFile(path, []byte(RenderMarkdown(run)), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

func sectionTitle(c model.Category) string {
	switch c {
	case model.CategorySummarization:
		return "Summarization Benchmark"
	case model.CategoryStructuredOutput:
		return "Structured Output Benchmark"
	default:
		return string(c) + " Benchmark"
	}
}

func anchor(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}

func status(r model.Result) string {
	if r.Success {
		return "✅"
	}
	return "❌"
}

func writeSummarization(b *strings.Builder, results []model.Result, stats model.Stats, hasStats bool) {
	b.WriteString("## Summarization Benchmark\n\n")
	b.WriteString("Tests LLM summarization capabilities with document analysis.\n\n")

	b.WriteString("### Results\n\n")
	b.WriteString("| Model | Document | Doc Tokens | Time | Input Tokens | Output Tokens | Total Tokens | Tok/s | Status |\n")
	b.WriteString("|-------|----------|------------|------|--------------|---------------|--------------|-------|--------|\n")
	for _, r := range results {
		in, out, total, tps := "-", "-", "-", "-"
		if p := r.Summarization; p != nil {
			in, out, total, tps = Count(p.InputTokens), Count(p.OutputTokens), Count(p.TotalTokens), Rate(p.TokensPerSecond)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Model, ShortDocument(r.Document), Count(r.DocumentTokens), FormatMs(r.DurationMs), in, out, total, tps, status(r))
	}
	b.WriteString("\n")

	if hasStats {
		writeStatsHeader(b, stats)
		if s := stats.Summarization; s != nil {
			fmt.Fprintf(b, "- **Total Input Tokens:** %s\n", Count(s.TotalInputTokens))
			fmt.Fprintf(b, "- **Total Output Tokens:** %s\n", Count(s.TotalOutputTokens))
			fmt.Fprintf(b, "- **Average Tokens/s:** %s\n", Rate(s.AverageTokensPerSecond))
		}
		writeExtremes(b, stats)
		writeModelAverages(b, stats)
	}

	b.WriteString("### Summaries\n\n")
	for _, r := range results {
		if !r.Success || r.Summarization == nil || r.Summarization.Summary == "" {
			continue
		}
		fmt.Fprintf(b, "<details>\n<summary><strong>%s</strong> → %s</summary>\n\n%s\n\n</details>\n\n",
			r.Model, ShortDocument(r.Document), r.Summarization.Summary)
	}
	writeFailures(b, results)
}

func writeStructuredOutput(b *strings.Builder, results []model.Result, stats model.Stats, hasStats bool) {
	b.WriteString("## Structured Output Benchmark\n\n")
	b.WriteString("Tests LLM JSON structured output capabilities with entity extraction.\n\n")

	b.WriteString("### Results\n\n")
	b.WriteString("| Model | Document | Doc Tokens | Time | Entity Types | Extractions | Relationships | Status |\n")
	b.WriteString("|-------|----------|------------|------|--------------|-------------|---------------|--------|\n")
	for _, r := range results {
		types, ex, rel := "-", "-", "-"
		if p := r.StructuredOutput; p != nil {
			types, ex, rel = Count(len(p.EntityTypes)), Count(p.ExtractionCount), Count(p.RelationshipCount)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Model, ShortDocument(r.Document), Count(r.DocumentTokens), FormatMs(r.DurationMs), types, ex, rel, status(r))
	}
	b.WriteString("\n")

	if hasStats {
		writeStatsHeader(b, stats)
		if s := stats.StructuredOutput; s != nil {
			fmt.Fprintf(b, "- **Total Extractions:** %s\n", Count(s.TotalExtractions))
			fmt.Fprintf(b, "- **Total Relationships:** %s\n", Count(s.TotalRelationships))
			fmt.Fprintf(b, "- **Avg Extractions/Doc:** %.1f\n", s.AverageExtractionsPerDoc)
			fmt.Fprintf(b, "- **Avg Entity Types/Doc:** %.1f\n", s.AverageEntityTypesPerDoc)
		}
		writeExtremes(b, stats)
		writeModelAverages(b, stats)
	}

	b.WriteString("### Entity Types by Model\n\n")
	for _, r := range results {
		p := r.StructuredOutput
		if !r.Success || p == nil || len(p.EntityTypes) == 0 {
			continue
		}
		fmt.Fprintf(b, "<details>\n<summary><strong>%s</strong> → %s (%d types, %d extractions)</summary>\n\n",
			r.Model, ShortDocument(r.Document), len(p.EntityTypes), p.ExtractionCount)
		quoted := make([]string, len(p.EntityTypes))
		for i, t := range p.EntityTypes {
			quoted[i] = "`" + t + "`"
		}
		fmt.Fprintf(b, "**Entity Types:**\n%s\n\n", strings.Join(quoted, ", "))
		if len(p.Extractions) > 0 {
			b.WriteString("**Sample Extractions (first 10):**\n\n| ID | Class | Text |\n|----|-------|------|\n")
			for i, e := range p.Extractions {
				if i == 10 {
					break
				}
				fmt.Fprintf(b, "| %s | %s | %s |\n", e.ID, e.ExtractionClass, clip(e.ExtractionText, 50))
			}
			b.WriteString("\n")
		}
		b.WriteString("</details>\n\n")
	}
	writeFailures(b, results)
}

func writeGeneric(b *strings.Builder, c model.Category, results []model.Result, stats model.Stats, hasStats bool) {
	fmt.Fprintf(b, "## %s\n\n### Results\n\n", sectionTitle(c))
	b.WriteString("| Model | Document | Doc Tokens | Time | Status |\n")
	b.WriteString("|-------|----------|------------|------|--------|\n")
	for _, r := range results {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			r.Model, ShortDocument(r.Document), Count(r.DocumentTokens), FormatMs(r.DurationMs), status(r))
	}
	b.WriteString("\n")
	if hasStats {
		writeStatsHeader(b, stats)
		writeExtremes(b, stats)
		writeModelAverages(b, stats)
	}
	writeFailures(b, results)
}

func writeStatsHeader(b *strings.Builder, stats model.Stats) {
	b.WriteString("### Statistics\n\n")
	fmt.Fprintf(b, "- **Total Duration:** %s\n", FormatMs(stats.TotalDurationMs))
	fmt.Fprintf(b, "- **Average Duration:** %s\n", FormatMs(stats.AverageDurationMs))
}

func writeExtremes(b *strings.Builder, stats model.Stats) {
	if f := stats.FastestResult; f.Model != "" {
		fmt.Fprintf(b, "- **⚡ Fastest:** %s on %s (%s)\n", f.Model, f.Document, FormatMs(f.DurationMs))
	}
	if s := stats.SlowestResult; s.Model != "" {
		fmt.Fprintf(b, "- **🐢 Slowest:** %s on %s (%s)\n", s.Model, s.Document, FormatMs(s.DurationMs))
	}
	b.WriteString("\n")
}

func writeModelAverages(b *strings.Builder, stats model.Stats) {
	b.WriteString("### Model Averages\n\n| Model | Average Time |\n|-------|--------------|\n")
	for _, m := range sortedAverages(stats.ModelAverages) {
		fmt.Fprintf(b, "| %s | %s |\n", m, FormatAverage(stats.ModelAverages[m]))
	}
	b.WriteString("\n")
}

func writeFailures(b *strings.Builder, results []model.Result) {
	var failed []model.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}
	b.WriteString("### Failures\n\n| Model | Document | Error |\n|-------|----------|-------|\n")
	for _, r := range failed {
		msg := strings.ReplaceAll(r.Error, "\n", " ")
		msg = strings.ReplaceAll(msg, "|", "\\|")
		fmt.Fprintf(b, "| %s | %s | %s |\n", r.Model, ShortDocument(r.Document), clip(msg, 200))
	}
	b.WriteString("\n")
}

// sortedAverages orders models fastest first; models without successes go last.
func sortedAverages(averages map[string]*float64) []string {
	models := make([]string, 0, len(averages))
	for m := range averages {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		a, b := averages[models[i]], averages[models[j]]
		switch {
		case a == nil && b == nil:
			return models[i] < models[j]
		case a == nil:
			return false
		case b == nil:
			return true
		case *a == *b:
			return models[i] < models[j]
		default:
			return *a < *b
		}
	})
	return models
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
