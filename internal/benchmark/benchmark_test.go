package benchmark

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/dex-bench/internal/llm"
	"github.com/daryltucker/dex-bench/internal/model"
)

// scriptedGen answers GenerateJSON from a queue of raw model replies.
type scriptedGen struct {
	replies []string
	errs    []error
	usage   llm.Usage
	calls   []llm.Request
}

func (g *scriptedGen) GenerateJSON(_ context.Context, r llm.Request, out any) (llm.Usage, error) {
	i := len(g.calls)
	g.calls = append(g.calls, r)
	if i < len(g.errs) && g.errs[i] != nil {
		return llm.Usage{}, g.errs[i]
	}
	if i >= len(g.replies) {
		return llm.Usage{}, errors.New("no scripted reply")
	}
	return g.usage, llm.DecodeJSON(g.replies[i], out)
}

var doc = model.Document{Name: "a.md", Content: "Alice works for Acme in Berlin."}

func TestRegistry(t *testing.T) {
	reg := NewDefaultRegistry(&scriptedGen{})

	assert.Equal(t, []model.Category{model.CategorySummarization, model.CategoryStructuredOutput}, reg.Categories())
	assert.Len(t, reg.Benchmarks(), 2)

	b, ok := reg.Get(model.CategoryStructuredOutput)
	require.True(t, ok)
	assert.Equal(t, model.CategoryStructuredOutput, b.ID())

	_, ok = reg.Get("translation")
	assert.False(t, ok)

	require.NoError(t, reg.Validate([]model.Category{model.CategorySummarization}))
	err := reg.Validate([]model.Category{model.CategorySummarization, "translation"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Contains(t, err.Error(), "translation")
}

func TestRegistryReplaceKeepsOrder(t *testing.T) {
	reg := NewDefaultRegistry(&scriptedGen{})
	replacement := NewSummarization(&scriptedGen{})
	reg.Register(replacement)

	assert.Equal(t, []model.Category{model.CategorySummarization, model.CategoryStructuredOutput}, reg.Categories())
	b, _ := reg.Get(model.CategorySummarization)
	assert.Same(t, replacement, b)
}

func TestSummarizationRun(t *testing.T) {
	gen := &scriptedGen{
		replies: []string{"```json\n{\"summary\": \"Alice is employed by Acme.\"}\n```"},
		usage:   llm.Usage{CompletionTokens: 7},
	}
	res, err := NewSummarization(gen).Run(context.Background(), "m1", doc)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, model.CategorySummarization, res.Type)
	assert.Equal(t, "m1", res.Model)
	assert.Equal(t, "a.md", res.Document)
	assert.Equal(t, CountTokens(doc.Content), res.DocumentTokens)
	require.NotNil(t, res.Summarization)
	assert.Equal(t, "Alice is employed by Acme.", res.Summarization.Summary)
	assert.Equal(t, 7, res.Summarization.OutputTokens)
	assert.Equal(t, res.Summarization.InputTokens+7, res.Summarization.TotalTokens)
	assert.Nil(t, res.StructuredOutput)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, "m1", gen.calls[0].Model)
	assert.Contains(t, gen.calls[0].Prompt, doc.Content)
}

func TestSummarizationFailure(t *testing.T) {
	t.Run("gateway error", func(t *testing.T) {
		gen := &scriptedGen{errs: []error{errors.New("network/connection error")}}
		res, err := NewSummarization(gen).Run(context.Background(), "m1", doc)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "network/connection error")
	})

	t.Run("empty summary", func(t *testing.T) {
		gen := &scriptedGen{replies: []string{`{"summary": ""}`}}
		res, err := NewSummarization(gen).Run(context.Background(), "m1", doc)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "invalid structured output")
	})
}

func TestStructuredOutputRun(t *testing.T) {
	gen := &scriptedGen{replies: []string{
		`{"entityTypes": ["PERSON", "ORGANIZATION", "LOCATION"]}`,
		`{"extractions": [
			{"id": "e1", "extractionClass": "PERSON", "extractionText": "Alice"},
			{"id": "e2", "extractionClass": "ORGANIZATION", "extractionText": "Acme"}
		], "relationships": [{"sourceId": "e1", "targetId": "e2", "relationshipType": "WORKS_FOR"}]}`,
	}}
	res, err := NewStructuredOutput(gen).Run(context.Background(), "m1", doc)
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.StructuredOutput)
	so := res.StructuredOutput
	assert.Equal(t, []string{"PERSON", "ORGANIZATION", "LOCATION"}, so.EntityTypes)
	assert.Equal(t, 2, so.ExtractionCount)
	assert.Equal(t, 1, so.RelationshipCount)
	assert.Equal(t, "WORKS_FOR", so.Relationships[0].RelationshipType)

	require.Len(t, gen.calls, 2)
	assert.Contains(t, gen.calls[1].Prompt, "PERSON, ORGANIZATION, LOCATION")
}

func TestStructuredOutputFailures(t *testing.T) {
	t.Run("entity types", func(t *testing.T) {
		gen := &scriptedGen{replies: []string{`{"entityTypes": []}`}}
		res, err := NewStructuredOutput(gen).Run(context.Background(), "m1", doc)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.True(t, strings.HasPrefix(res.Error, "Entity types generation failed: "), res.Error)
		assert.Len(t, gen.calls, 1)
	})

	t.Run("extraction", func(t *testing.T) {
		gen := &scriptedGen{replies: []string{`{"entityTypes": ["PERSON"]}`, `{"extractions": []}`}}
		res, err := NewStructuredOutput(gen).Run(context.Background(), "m1", doc)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.True(t, strings.HasPrefix(res.Error, "Entity extraction failed: "), res.Error)
		assert.Equal(t, []string{"PERSON"}, res.StructuredOutput.EntityTypes)
	})
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Equal(t, 1, CountTokens("abcd"))
	assert.Equal(t, 2, CountTokens("abcde"))
	assert.Equal(t, 5, CountTokens("a b c d e"))
}
