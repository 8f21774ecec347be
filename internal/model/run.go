/*
PURPOSE:
  The Run record: one benchmark run as persisted by the store, plus the
  helpers the scheduler and store need to reason about it.

REQUIREMENTS:
  User-specified:
  - A run is identified by its creation time: benchmark-<ISO timestamp>.
  - A (category, model, document) triple is completed once it has a Result.

  Implementation-discovered:
  - Run ids sort lexically in creation order; the file store relies on it.
  - Resume works on a Clone so a failed invocation never mutates the caller's run.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/store, internal/output, internal/cli

IMPLEMENTATION RULES:
  - No I/O here.

RELATED FILES:
  - internal/model/types.go
  - internal/store/store.go
*/

package model

import (
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of a Run.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
)

// RunIDPrefix prefixes every run id and stored run file.
const RunIDPrefix = "benchmark-"

const runIDTimeLayout = "2006-01-02T15:04:05.000Z"

// Run is one full sweep across the task matrix.
type Run struct {
	ID          string                `json:"id"`
	Timestamp   time.Time             `json:"timestamp"`
	Status      Status                `json:"status"`
	Models      []string              `json:"models"`
	Documents   []string              `json:"documents"`
	Categories  []Category            `json:"categories"`
	Results     map[Category][]Result `json:"results"`
	Stats       map[Category]Stats    `json:"stats"`
	Invocations []Invocation          `json:"invocations,omitempty"`
}

// Invocation records one scheduler invocation against a run, so resumed
// runs keep a history of how they were driven.
type Invocation struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	Resumed     bool      `json:"resumed"`
	Concurrency int       `json:"concurrency"`
	Retries     int       `json:"retries"`
}

// NewRun creates an in-progress run whose id is derived from now.
func NewRun(now time.Time, models, documents []string, categories []Category) *Run {
	now = now.UTC().Truncate(time.Millisecond)
	return &Run{
		ID:         NewRunID(now),
		Timestamp:  now,
		Status:     StatusInProgress,
		Models:     append([]string(nil), models...),
		Documents:  append([]string(nil), documents...),
		Categories: append([]Category(nil), categories...),
		Results:    make(map[Category][]Result),
		Stats:      make(map[Category]Stats),
	}
}

// NewRunID formats a run id such as benchmark-2024-01-01T12-00-00-000Z.
func NewRunID(t time.Time) string {
	stamp := t.UTC().Format(runIDTimeLayout)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return RunIDPrefix + stamp
}

// ParseRunTime recovers the creation time embedded in a run id.
func ParseRunTime(id string) (time.Time, bool) {
	s, ok := strings.CutPrefix(id, RunIDPrefix)
	if !ok || len(s) != len("2006-01-02T15-04-05-000Z") || !strings.HasSuffix(s, "Z") {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02T15-04-05", s[:19])
	if err != nil {
		return time.Time{}, false
	}
	ms, err := strconv.Atoi(s[20:23])
	if err != nil {
		return time.Time{}, false
	}
	return t.Add(time.Duration(ms) * time.Millisecond).UTC(), true
}

// HasResult reports whether a result exists for the triple.
func (r *Run) HasResult(category Category, model, document string) bool {
	for _, res := range r.Results[category] {
		if res.Model == model && res.Document == document {
			return true
		}
	}
	return false
}

// CompletedCount is the number of result records across all categories.
func (r *Run) CompletedCount() int {
	n := 0
	for _, results := range r.Results {
		n += len(results)
	}
	return n
}

// Clone returns a copy whose slices and maps can be mutated independently.
func (r *Run) Clone() *Run {
	c := *r
	c.Models = append([]string(nil), r.Models...)
	c.Documents = append([]string(nil), r.Documents...)
	c.Categories = append([]Category(nil), r.Categories...)
	c.Invocations = append([]Invocation(nil), r.Invocations...)
	c.Results = make(map[Category][]Result, len(r.Results))
	for k, v := range r.Results {
		c.Results[k] = append([]Result(nil), v...)
	}
	c.Stats = make(map[Category]Stats, len(r.Stats))
	for k, v := range r.Stats {
		c.Stats[k] = v
	}
	return &c
}

// ShortModel strips the provider prefix: "google/gemma-3-12b-it" -> "gemma-3-12b-it".
func ShortModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 && i < len(model)-1 {
		return model[i+1:]
	}
	return model
}
