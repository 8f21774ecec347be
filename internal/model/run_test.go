package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunID(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 30, 45, 123_000_000, time.UTC)

	id := NewRunID(ts)
	assert.Equal(t, "benchmark-2024-01-01T12-30-45-123Z", id)

	parsed, ok := ParseRunTime(id)
	require.True(t, ok)
	assert.True(t, parsed.Equal(ts), "got %s", parsed)

	t.Run("rejects foreign names", func(t *testing.T) {
		for _, id := range []string{"", "benchmark-", "run-2024-01-01T12-30-45-123Z", "benchmark-2024-13-01T12-30-45-123Z", "benchmark-2024-01-01T12-30-45-abcZ"} {
			_, ok := ParseRunTime(id)
			assert.False(t, ok, id)
		}
	})
}

func TestNewRun(t *testing.T) {
	models := []string{"m1", "m2"}
	run := NewRun(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC), models, []string{"a.md"}, []Category{CategorySummarization})

	assert.Equal(t, StatusInProgress, run.Status)
	assert.Equal(t, "benchmark-2025-03-04T05-06-07-000Z", run.ID)
	assert.NotNil(t, run.Results)
	assert.NotNil(t, run.Stats)

	models[0] = "changed"
	assert.Equal(t, "m1", run.Models[0], "run must own its model slice")
}

func TestHasResultAndCompletedCount(t *testing.T) {
	run := NewRun(time.Now(), []string{"m1"}, []string{"d1", "d2"}, []Category{CategorySummarization, CategoryStructuredOutput})
	run.Results[CategorySummarization] = []Result{{Model: "m1", Document: "d1"}}
	run.Results[CategoryStructuredOutput] = []Result{{Model: "m1", Document: "d1"}, {Model: "m1", Document: "d2"}}

	assert.True(t, run.HasResult(CategorySummarization, "m1", "d1"))
	assert.False(t, run.HasResult(CategorySummarization, "m1", "d2"))
	assert.True(t, run.HasResult(CategoryStructuredOutput, "m1", "d2"))
	assert.Equal(t, 3, run.CompletedCount())
}

func TestClone(t *testing.T) {
	run := NewRun(time.Now(), []string{"m1"}, []string{"d1"}, []Category{CategorySummarization})
	run.Results[CategorySummarization] = []Result{{Model: "m1", Document: "d1"}}

	c := run.Clone()
	c.Results[CategorySummarization] = append(c.Results[CategorySummarization], Result{Model: "m1", Document: "d2"})
	c.Categories[0] = CategoryStructuredOutput

	assert.Len(t, run.Results[CategorySummarization], 1)
	assert.Equal(t, CategorySummarization, run.Categories[0])
}

func TestShortModel(t *testing.T) {
	assert.Equal(t, "gemma-3-12b-it", ShortModel("google/gemma-3-12b-it"))
	assert.Equal(t, "plain", ShortModel("plain"))
	assert.Equal(t, "trailing/", ShortModel("trailing/"))
}
