/*
PURPOSE:
  Task Matrix Builder: enumerates category x model x document and counts
  total and completed tasks for progress reporting.

IMPLEMENTATION RULES:
  - Order is category, then model, then document. Do not change it; progress
    numbering and resume banners depend on it.

RELATED FILES:
  - internal/engine/runner.go
*/

package engine

import "github.com/daryltucker/dex-bench/internal/model"

// BuildTasks enumerates the task matrix: category, then model, then document,
// each in the order given. Progress totals depend on this order staying stable.
func BuildTasks(categories []model.Category, models []string, documents []model.Document) []model.Task {
	tasks := make([]model.Task, 0, len(categories)*len(models)*len(documents))
	for _, c := range categories {
		for _, m := range models {
			for _, d := range documents {
				tasks = append(tasks, model.Task{Category: c, Model: m, Document: d})
			}
		}
	}
	return tasks
}

// CountTotalRuns is the size of the task matrix.
func CountTotalRuns(categories []model.Category, modelCount, documentCount int) int {
	return len(categories) * modelCount * documentCount
}

// CountCompletedRuns counts the results already recorded in run.
func CountCompletedRuns(run *model.Run) int {
	if run == nil {
		return 0
	}
	return run.CompletedCount()
}
