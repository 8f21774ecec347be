/*
PURPOSE:
  Stats Aggregator: the category-independent statistics every benchmark starts from.

REQUIREMENTS:
  User-specified:
  - Durations, fastest, slowest and per-model averages over successful results only.

  Implementation-discovered:
  - Models with no success still appear in ModelAverages (as null) so reports list every model.

RELATED FILES:
  - internal/benchmark/summarization.go
  - internal/benchmark/structured.go
*/

package benchmark

import (
	"sort"

	"github.com/daryltucker/dex-bench/internal/model"
)

// BaseStats computes the category-independent aggregates over results and
// returns them with the successful results in encounter order.
//
// Durations only count successful results. Fastest and slowest come from a
// stable sort, so ties keep encounter order. Every roster model gets a
// ModelAverages entry; it is nil when the model has no successful result.
func BaseStats(category model.Category, results []model.Result, models []string) (model.Stats, []model.Result) {
	successes := make([]model.Result, 0, len(results))
	for _, r := range results {
		if r.Success {
			successes = append(successes, r)
		}
	}

	stats := model.Stats{
		Type:          category,
		ModelAverages: make(map[string]*float64, len(models)),
	}

	for _, r := range successes {
		stats.TotalDurationMs += r.DurationMs
	}
	if len(successes) > 0 {
		stats.AverageDurationMs = stats.TotalDurationMs / float64(len(successes))

		sorted := append([]model.Result(nil), successes...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].DurationMs < sorted[j].DurationMs
		})
		stats.FastestResult = refOf(sorted[0])
		stats.SlowestResult = refOf(sorted[len(sorted)-1])
	}

	for _, m := range models {
		var sum float64
		var n int
		for _, r := range successes {
			if r.Model == m {
				sum += r.DurationMs
				n++
			}
		}
		if n == 0 {
			stats.ModelAverages[m] = nil
			continue
		}
		avg := sum / float64(n)
		stats.ModelAverages[m] = &avg
	}

	return stats, successes
}

func refOf(r model.Result) model.ResultRef {
	return model.ResultRef{Model: r.Model, Document: r.Document, DurationMs: r.DurationMs}
}
