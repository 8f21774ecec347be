/*
PURPOSE:
  Task Registry: maps a benchmark Category to its implementation.
  The scheduler never branches on a category name; it always goes through here.

REQUIREMENTS:
  User-specified:
  - Summarization and structured-output benchmarks, runnable per (model, document).
  - Reject unknown categories before any task runs.

  Implementation-discovered:
  - Registration order is the default category order (progress totals depend on it).

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine (Run + CalculateStats), internal/cli (categories, flag validation)
  - Uses: internal/llm via the Generator interface

ERROR HANDLING:
  - Run returns a failed Result (Success=false, Error set) for model-side failures.
  - A returned error means something unexpected; the scheduler treats it as a failed attempt.

IMPLEMENTATION RULES:
  - Populate at startup; read-only afterwards.

USAGE:
  reg := benchmark.NewDefaultRegistry(llm.New(cfg))
  b, ok := reg.Get(model.CategorySummarization)

RELATED FILES:
  - internal/benchmark/summarization.go
  - internal/benchmark/structured.go
  - internal/benchmark/stats.go
*/

package benchmark

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/llm"
	"github.com/daryltucker/dex-bench/internal/model"
)

// ErrUnknownCategory is returned when a requested category is not registered.
var ErrUnknownCategory = errors.New("unknown category")

// Benchmark is one category implementation.
type Benchmark interface {
	ID() model.Category
	Name() string
	Description() string
	Run(ctx context.Context, modelName string, doc model.Document) (model.Result, error)
	CalculateStats(results []model.Result, models []string) model.Stats
}

// Generator is the slice of the LLM client the benchmarks need.
type Generator interface {
	GenerateJSON(ctx context.Context, r llm.Request, out any) (llm.Usage, error)
}

// Registry holds the registered benchmarks in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []model.Category
	entries map[model.Category]Benchmark
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[model.Category]Benchmark)}
}

// NewDefaultRegistry registers the built-in benchmarks.
func NewDefaultRegistry(gen Generator) *Registry {
	r := NewRegistry()
	r.Register(NewSummarization(gen))
	r.Register(NewStructuredOutput(gen))
	return r
}

// Register adds b, replacing any benchmark with the same id in place.
func (r *Registry) Register(b Benchmark) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[b.ID()]; !exists {
		r.order = append(r.order, b.ID())
	}
	r.entries[b.ID()] = b
}

// Get returns the benchmark for category.
func (r *Registry) Get(category model.Category) (Benchmark, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.entries[category]
	return b, ok
}

// Categories lists registered categories in registration order.
func (r *Registry) Categories() []model.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Category(nil), r.order...)
}

// Benchmarks lists registered benchmarks in registration order.
func (r *Registry) Benchmarks() []Benchmark {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Benchmark, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.entries[c])
	}
	return out
}

// Validate fails with ErrUnknownCategory for the first unregistered category.
func (r *Registry) Validate(categories []model.Category) error {
	for _, c := range categories {
		if _, ok := r.Get(c); !ok {
			names := make([]string, 0)
			for _, known := range r.Categories() {
				names = append(names, string(known))
			}
			return errors.WithHintf(errors.Wrapf(ErrUnknownCategory, "%q", c),
				"available categories: %s", strings.Join(names, ", "))
		}
	}
	return nil
}
