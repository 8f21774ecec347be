/*
PURPOSE:
  Defines the core data structures used throughout dex-bench.
  A Run is the unit of persistence and resumability; Results and Stats
  are tagged unions keyed by the benchmark Category.

REQUIREMENTS:
  User-specified:
  - Record model, document, duration, success and error for every task.
  - Keep category-specific payloads (tokens, summary, extractions) next to the shared base.

  Implementation-discovered:
  - JSON field names are part of the saved run format; renaming one breaks resume of runs on disk.
  - At most one Result per (category, model, document) triple.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/benchmark, internal/store, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - The scheduler only touches the base fields of Result.
  - Payload pointers are nil for other categories.

USAGE:
  res := model.Result{Type: model.CategorySummarization, ...}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add the field to the payload and update output/markdown.go.

RELATED FILES:
  - internal/model/run.go
  - internal/output/markdown.go

MAINTENANCE:
  - Update when adding a new benchmark category.
*/

package model

// Category identifies a benchmark kind.
type Category string

const (
	CategorySummarization    Category = "summarization"
	CategoryStructuredOutput Category = "structured-output"
)

// Document is one input loaded from the docs directory.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Task is one (category, model, document) unit of work. Not persisted.
type Task struct {
	Category Category
	Model    string
	Document Document
}

// Result is the record produced by exactly one task execution.
type Result struct {
	Type           Category `json:"type"`
	Model          string   `json:"model"`
	Document       string   `json:"document"`
	DocumentTokens int      `json:"documentTokens"`
	DurationMs     float64  `json:"durationMs"`
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`

	Summarization    *SummarizationPayload    `json:"summarization,omitempty"`
	StructuredOutput *StructuredOutputPayload `json:"structuredOutput,omitempty"`
}

// SummarizationPayload holds the summarization-specific part of a Result.
type SummarizationPayload struct {
	InputTokens     int     `json:"inputTokens"`
	OutputTokens    int     `json:"outputTokens"`
	TotalTokens     int     `json:"totalTokens"`
	TokensPerSecond float64 `json:"tokensPerSecond"`
	Summary         string  `json:"summary"`
}

// Extraction is a single entity pulled from a document.
type Extraction struct {
	ID              string `json:"id"`
	ExtractionClass string `json:"extractionClass"`
	ExtractionText  string `json:"extractionText"`
}

// Relationship links two extractions by id.
type Relationship struct {
	SourceID         string `json:"sourceId"`
	TargetID         string `json:"targetId"`
	RelationshipType string `json:"relationshipType"`
}

// StructuredOutputPayload holds the entity extraction part of a Result.
type StructuredOutputPayload struct {
	EntityTypesTimeMs float64        `json:"entityTypesTimeMs"`
	ExtractionTimeMs  float64        `json:"extractionTimeMs"`
	EntityTypes       []string       `json:"entityTypes"`
	ExtractionCount   int            `json:"extractionCount"`
	RelationshipCount int            `json:"relationshipCount"`
	Extractions       []Extraction   `json:"extractions"`
	Relationships     []Relationship `json:"relationships"`
}

// ResultRef points at a single result, used for fastest/slowest.
type ResultRef struct {
	Model      string  `json:"model"`
	Document   string  `json:"document"`
	DurationMs float64 `json:"durationMs"`
}

// Stats is the aggregate for one category. Always recomputed wholesale.
type Stats struct {
	Type              Category            `json:"type"`
	TotalDurationMs   float64             `json:"totalDurationMs"`
	AverageDurationMs float64             `json:"averageDurationMs"`
	FastestResult     ResultRef           `json:"fastestResult"`
	SlowestResult     ResultRef           `json:"slowestResult"`
	ModelAverages     map[string]*float64 `json:"modelAverages"` // nil entry: no successful results

	Summarization    *SummarizationStats    `json:"summarization,omitempty"`
	StructuredOutput *StructuredOutputStats `json:"structuredOutput,omitempty"`
}

// SummarizationStats holds the summarization-specific aggregates.
type SummarizationStats struct {
	TotalInputTokens       int     `json:"totalInputTokens"`
	TotalOutputTokens      int     `json:"totalOutputTokens"`
	AverageTokensPerSecond float64 `json:"averageTokensPerSecond"`
}

// StructuredOutputStats holds the extraction-specific aggregates.
type StructuredOutputStats struct {
	TotalExtractions         int     `json:"totalExtractions"`
	TotalRelationships       int     `json:"totalRelationships"`
	AverageExtractionsPerDoc float64 `json:"averageExtractionsPerDoc"`
	AverageEntityTypesPerDoc float64 `json:"averageEntityTypesPerDoc"`
}
