/*
PURPOSE:
  Loads the *.md documents the benchmarks run against, sorted by file name.

RELATED FILES:
  - internal/cli/run.go
*/

// Package docs loads the markdown documents the benchmarks run against.
package docs

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/model"
)

// Pattern selects benchmark documents inside the docs directory.
const Pattern = "*.md"

// Load returns every *.md file in dir, sorted by name so load order is stable
// across invocations (the task matrix and progress totals depend on it).
func Load(dir string) ([]model.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WithHintf(errors.Wrapf(err, "failed to open docs directory %s", dir),
			"put the documents to benchmark in %s as .md files", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, Pattern))
	if err != nil {
		return nil, errors.Wrap(err, "bad document pattern")
	}
	sort.Strings(paths)

	documents := make([]model.Document, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read document %s", p)
		}
		documents = append(documents, model.Document{Name: filepath.Base(p), Content: string(content)})
	}
	return documents, nil
}

// Names returns the document names in load order.
func Names(documents []model.Document) []string {
	names := make([]string, len(documents))
	for i, d := range documents {
		names[i] = d.Name
	}
	return names
}
