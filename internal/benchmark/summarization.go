/*
PURPOSE:
  The summarization benchmark: one structured call returning {summary}.

REQUIREMENTS:
  User-specified:
  - Measure duration, input/output tokens and tokens per second per document.

  Implementation-discovered:
  - Gateways do not always report usage; fall back to CountTokens.
  - An empty summary is a model failure, not a success.

ARCHITECTURE INTEGRATION:
  - Registered by: NewDefaultRegistry
  - Uses: Generator (internal/llm), internal/prompts

ERROR HANDLING:
  - Model-side failures return a failed Result that still carries the input token count.

USAGE:
  b := benchmark.NewSummarization(llm.New(cfg))
  res, err := b.Run(ctx, "qwen3:8b", doc)

RELATED FILES:
  - internal/benchmark/registry.go
  - internal/prompts/prompts.go
*/

package benchmark

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/llm"
	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/prompts"
)

// Summarization asks a model for a JSON summary of the document and measures
// token throughput.
type Summarization struct {
	gen Generator
}

// NewSummarization returns the summarization benchmark.
func NewSummarization(gen Generator) *Summarization {
	return &Summarization{gen: gen}
}

func (s *Summarization) ID() model.Category { return model.CategorySummarization }
func (s *Summarization) Name() string       { return "Summarization" }
func (s *Summarization) Description() string {
	return "Document summarization with token throughput"
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Run summarizes doc with modelName. Model-side failures come back as a
// failed Result, never as an error.
func (s *Summarization) Run(ctx context.Context, modelName string, doc model.Document) (model.Result, error) {
	prompt := prompts.SummarizeDocument(doc.Content)
	inputTokens := CountTokens(prompt)

	res := model.Result{
		Type:           model.CategorySummarization,
		Model:          modelName,
		Document:       doc.Name,
		DocumentTokens: CountTokens(doc.Content),
	}

	var out summaryResponse
	start := time.Now()
	usage, err := s.gen.GenerateJSON(ctx, llm.Request{
		Model:  modelName,
		System: prompts.AnalyzeSystem,
		Prompt: prompt,
	}, &out)
	res.DurationMs = millisSince(start)

	if err == nil && out.Summary == "" {
		err = errors.New(`invalid structured output: expected {"summary": string}`)
	}
	if err != nil {
		res.Error = err.Error()
		res.Summarization = &model.SummarizationPayload{InputTokens: inputTokens, TotalTokens: inputTokens}
		return res, nil
	}

	outputTokens := usage.CompletionTokens
	if outputTokens <= 0 {
		outputTokens = CountTokens(out.Summary)
	}
	var tps float64
	if res.DurationMs > 0 {
		tps = float64(outputTokens) / res.DurationMs * 1000
	}

	res.Success = true
	res.Summarization = &model.SummarizationPayload{
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		TotalTokens:     inputTokens + outputTokens,
		TokensPerSecond: tps,
		Summary:         out.Summary,
	}
	return res, nil
}

// CalculateStats adds token totals and mean throughput to the base stats.
func (s *Summarization) CalculateStats(results []model.Result, models []string) model.Stats {
	stats, successes := BaseStats(model.CategorySummarization, results, models)

	sum := &model.SummarizationStats{}
	var tps float64
	for _, r := range successes {
		if r.Summarization == nil {
			continue
		}
		sum.TotalInputTokens += r.Summarization.InputTokens
		sum.TotalOutputTokens += r.Summarization.OutputTokens
		tps += r.Summarization.TokensPerSecond
	}
	if len(successes) > 0 {
		sum.AverageTokensPerSecond = tps / float64(len(successes))
	}
	stats.Summarization = sum
	return stats
}
