/*
PURPOSE:
  Prompt text for both benchmarks.

IMPLEMENTATION RULES:
  - Changing a prompt changes what is measured; results from before and after are not comparable.

RELATED FILES:
  - internal/benchmark/summarization.go
  - internal/benchmark/structured.go
*/

// Package prompts holds the prompt text sent to the models under test.
package prompts

import (
	"fmt"
	"strings"
)

// System prompts for the two agents.
const (
	AnalyzeSystem    = "You are a precise document analysis assistant. Analyze documents and extract structured information as requested."
	ExtractionSystem = "You are a precise entity extraction assistant. Extract entities exactly as they appear in the text."
)

// SummarizeDocument asks for a JSON object {"summary": string}.
func SummarizeDocument(document string) string {
	return fmt.Sprintf(`Generate a comprehensive yet concise summary of this document:
<document>%s</document>

Guidelines:
- Capture the main purpose, key arguments, and conclusions
- Preserve the document's tone and intent
- Include critical details, facts, and figures that are central to understanding
- Maintain logical flow from introduction through conclusion
- Scale summary length appropriately: ~1-2 paragraphs for short docs, ~3-4 for longer ones
- Avoid generic filler phrases; be specific and informative

Respond with a JSON object of the form {"summary": "<the summary>"}.`, document)
}

// GenerateEntityTypes asks for {"entityTypes": [string]}.
func GenerateEntityTypes(document string) string {
	return fmt.Sprintf(`Read the document below and decide which entity types are worth extracting from it.
<document>%s</document>

Return entity types in UPPER_SNAKE_CASE (for example PERSON, ORGANIZATION, LOCATION).
Return at least one type.

Respond with a JSON object of the form {"entityTypes": ["TYPE_A", "TYPE_B"]}.`, document)
}

// ExtractEntities asks for extractions and relationships over the given types.
func ExtractEntities(document string, entityTypes []string) string {
	return fmt.Sprintf(`Extract every entity of the following types from the document: %s
<document>%s</document>

Rules:
- extractionText must be the exact text from the document
- give each extraction a unique id (e1, e2, e3, ...)
- extractionClass is one of the requested types
- relationships link extraction ids with an UPPER_SNAKE_CASE relationshipType (for example WORKS_FOR, LOCATED_IN)

Respond with a JSON object of the form
{"extractions": [{"id": "e1", "extractionClass": "PERSON", "extractionText": "..."}],
 "relationships": [{"sourceId": "e1", "targetId": "e2", "relationshipType": "WORKS_FOR"}]}.`,
		strings.Join(entityTypes, ", "), document)
}
