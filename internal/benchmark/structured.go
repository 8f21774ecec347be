/*
PURPOSE:
  The structured-output benchmark: two dependent calls per document.
  Phase 1 proposes entity types, phase 2 extracts entities and relationships.

REQUIREMENTS:
  User-specified:
  - Record extractions, relationships and entity types per document.

  Implementation-discovered:
  - Phase 2 depends on phase 1, so a phase 1 failure ends the task.
  - Per-phase timings help tell slow planning from slow extraction.

ARCHITECTURE INTEGRATION:
  - Registered by: NewDefaultRegistry
  - Uses: Generator (internal/llm), internal/prompts

ERROR HANDLING:
  - Missing or empty fields are model failures, reported with the failing phase.

IMPLEMENTATION RULES:
  - Decode into pointer fields so "absent" and "empty" can be told apart.

RELATED FILES:
  - internal/benchmark/registry.go
  - internal/benchmark/stats.go
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

// StructuredOutput is the two-phase entity extraction benchmark: first the
// model proposes entity types, then it extracts entities and relationships of
// those types.
type StructuredOutput struct {
	gen Generator
}

// NewStructuredOutput returns the structured-output benchmark.
func NewStructuredOutput(gen Generator) *StructuredOutput {
	return &StructuredOutput{gen: gen}
}

func (s *StructuredOutput) ID() model.Category { return model.CategoryStructuredOutput }
func (s *StructuredOutput) Name() string       { return "Structured Output" }
func (s *StructuredOutput) Description() string {
	return "Entity type generation and entity/relationship extraction"
}

type entityTypesResponse struct {
	EntityTypes []string `json:"entityTypes"`
}

type extractionResponse struct {
	Extractions   *[]model.Extraction   `json:"extractions"`
	Relationships *[]model.Relationship `json:"relationships"`
}

func (s *StructuredOutput) Run(ctx context.Context, modelName string, doc model.Document) (model.Result, error) {
	res := model.Result{
		Type:             model.CategoryStructuredOutput,
		Model:            modelName,
		Document:         doc.Name,
		DocumentTokens:   CountTokens(doc.Content),
		StructuredOutput: &model.StructuredOutputPayload{},
	}
	payload := res.StructuredOutput
	start := time.Now()

	var types entityTypesResponse
	phase := time.Now()
	_, err := s.gen.GenerateJSON(ctx, llm.Request{
		Model:  modelName,
		System: prompts.AnalyzeSystem,
		Prompt: prompts.GenerateEntityTypes(doc.Content),
	}, &types)
	payload.EntityTypesTimeMs = millisSince(phase)
	if err == nil && len(types.EntityTypes) == 0 {
		err = errors.New(`invalid structured output: expected {"entityTypes": [string]}`)
	}
	if err != nil {
		res.DurationMs = millisSince(start)
		res.Error = "Entity types generation failed: " + err.Error()
		return res, nil
	}
	payload.EntityTypes = types.EntityTypes

	var extracted extractionResponse
	phase = time.Now()
	_, err = s.gen.GenerateJSON(ctx, llm.Request{
		Model:  modelName,
		System: prompts.ExtractionSystem,
		Prompt: prompts.ExtractEntities(doc.Content, types.EntityTypes),
	}, &extracted)
	payload.ExtractionTimeMs = millisSince(phase)
	if err == nil && (extracted.Extractions == nil || extracted.Relationships == nil) {
		err = errors.New(`invalid structured output: expected {"extractions": [...], "relationships": [...]}`)
	}
	res.DurationMs = millisSince(start)
	if err != nil {
		res.Error = "Entity extraction failed: " + err.Error()
		return res, nil
	}

	payload.Extractions = *extracted.Extractions
	payload.Relationships = *extracted.Relationships
	payload.ExtractionCount = len(payload.Extractions)
	payload.RelationshipCount = len(payload.Relationships)
	res.Success = true
	return res, nil
}

// CalculateStats adds extraction totals to the base stats.
// AverageExtractionsPerDoc divides by distinct documents; AverageEntityTypesPerDoc
// divides by successful results.
func (s *StructuredOutput) CalculateStats(results []model.Result, models []string) model.Stats {
	stats, successes := BaseStats(model.CategoryStructuredOutput, results, models)

	so := &model.StructuredOutputStats{}
	docs := make(map[string]struct{})
	var entityTypes int
	for _, r := range successes {
		docs[r.Document] = struct{}{}
		if r.StructuredOutput == nil {
			continue
		}
		so.TotalExtractions += r.StructuredOutput.ExtractionCount
		so.TotalRelationships += r.StructuredOutput.RelationshipCount
		entityTypes += len(r.StructuredOutput.EntityTypes)
	}
	if len(docs) > 0 {
		so.AverageExtractionsPerDoc = float64(so.TotalExtractions) / float64(len(docs))
	}
	if len(successes) > 0 {
		so.AverageEntityTypesPerDoc = float64(entityTypes) / float64(len(successes))
	}
	stats.StructuredOutput = so
	return stats
}
