package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/dex-bench/internal/model"
)

func result(m, d string, ms float64, ok bool) model.Result {
	r := model.Result{Type: model.CategorySummarization, Model: m, Document: d, DurationMs: ms, Success: ok}
	if !ok {
		r.Error = "boom"
	}
	return r
}

func TestBaseStats(t *testing.T) {
	results := []model.Result{
		result("m1", "d1", 100, true),
		result("m1", "d2", 5, false),
		result("m2", "d1", 200, true),
		result("m1", "d3", 300, true),
	}
	stats, successes := BaseStats(model.CategorySummarization, results, []string{"m1", "m2", "m3"})

	assert.Len(t, successes, 3)
	assert.Equal(t, model.CategorySummarization, stats.Type)
	assert.InDelta(t, 600, stats.TotalDurationMs, 1e-9)
	assert.InDelta(t, 200, stats.AverageDurationMs, 1e-9)
	assert.Equal(t, model.ResultRef{Model: "m1", Document: "d1", DurationMs: 100}, stats.FastestResult)
	assert.Equal(t, model.ResultRef{Model: "m1", Document: "d3", DurationMs: 300}, stats.SlowestResult)

	require.Contains(t, stats.ModelAverages, "m1")
	require.NotNil(t, stats.ModelAverages["m1"])
	assert.InDelta(t, 200, *stats.ModelAverages["m1"], 1e-9)
	require.NotNil(t, stats.ModelAverages["m2"])
	assert.InDelta(t, 200, *stats.ModelAverages["m2"], 1e-9)
	require.Contains(t, stats.ModelAverages, "m3")
	assert.Nil(t, stats.ModelAverages["m3"])
}

func TestBaseStatsTiesKeepEncounterOrder(t *testing.T) {
	results := []model.Result{
		result("m1", "d1", 50, true),
		result("m2", "d1", 50, true),
	}
	stats, _ := BaseStats(model.CategorySummarization, results, []string{"m1", "m2"})
	assert.Equal(t, "m1", stats.FastestResult.Model)
	assert.Equal(t, "m2", stats.SlowestResult.Model)
}

func TestBaseStatsNoSuccesses(t *testing.T) {
	stats, successes := BaseStats(model.CategorySummarization, []model.Result{result("m1", "d1", 10, false)}, []string{"m1"})
	assert.Empty(t, successes)
	assert.Zero(t, stats.TotalDurationMs)
	assert.Zero(t, stats.AverageDurationMs)
	assert.Equal(t, model.ResultRef{}, stats.FastestResult)
	assert.Nil(t, stats.ModelAverages["m1"])
}

func TestSummarizationStats(t *testing.T) {
	a := result("m1", "d1", 100, true)
	a.Summarization = &model.SummarizationPayload{InputTokens: 10, OutputTokens: 20, TokensPerSecond: 200}
	b := result("m1", "d2", 100, true)
	b.Summarization = &model.SummarizationPayload{InputTokens: 30, OutputTokens: 40, TokensPerSecond: 400}
	c := result("m1", "d3", 1, false)
	c.Summarization = &model.SummarizationPayload{InputTokens: 1000}

	stats := NewSummarization(nil).CalculateStats([]model.Result{a, b, c}, []string{"m1"})
	require.NotNil(t, stats.Summarization)
	assert.Equal(t, 40, stats.Summarization.TotalInputTokens)
	assert.Equal(t, 60, stats.Summarization.TotalOutputTokens)
	assert.InDelta(t, 300, stats.Summarization.AverageTokensPerSecond, 1e-9)
	assert.Nil(t, stats.StructuredOutput)
}

func TestStructuredOutputStats(t *testing.T) {
	mk := func(m, d string, types, extractions, relationships int) model.Result {
		r := result(m, d, 10, true)
		r.Type = model.CategoryStructuredOutput
		r.StructuredOutput = &model.StructuredOutputPayload{
			EntityTypes:       make([]string, types),
			ExtractionCount:   extractions,
			RelationshipCount: relationships,
		}
		return r
	}
	results := []model.Result{
		mk("m1", "d1", 2, 4, 1),
		mk("m2", "d1", 4, 6, 3),
		mk("m1", "d2", 3, 2, 2),
	}

	stats := NewStructuredOutput(nil).CalculateStats(results, []string{"m1", "m2"})
	require.NotNil(t, stats.StructuredOutput)
	assert.Equal(t, model.CategoryStructuredOutput, stats.Type)
	assert.Equal(t, 12, stats.StructuredOutput.TotalExtractions)
	assert.Equal(t, 6, stats.StructuredOutput.TotalRelationships)
	assert.InDelta(t, 6, stats.StructuredOutput.AverageExtractionsPerDoc, 1e-9)
	assert.InDelta(t, 3, stats.StructuredOutput.AverageEntityTypesPerDoc, 1e-9)
}
