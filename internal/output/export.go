/*
PURPOSE:
  Exports every Result of a run through the CSV or JSON Lines writer.

ERROR HANDLING:
  - Unknown formats are rejected before the output file is created.

USAGE:
  n, err := output.Export(run, output.FormatCSV, "results/run.csv")

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go
*/

package output

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/model"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

type resultWriter interface {
	Write(runID string, r model.Result) error
	Close() error
}

// Export writes every result of run to path in the given format, categories
// in run order. An empty format is inferred from the file extension.
func Export(run *model.Run, format, path string) (int, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	var (
		w   resultWriter
		err error
	)
	switch format {
	case FormatCSV:
		w, err = NewCSVWriter(path)
	case FormatJSONL, "json", "ndjson":
		w, err = NewJSONWriter(path)
	default:
		return 0, errors.Newf("unknown export format %q (want csv or jsonl)", format)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s", path)
	}

	n := 0
	for _, c := range run.Categories {
		for _, r := range run.Results[c] {
			if err := w.Write(run.ID, r); err != nil {
				w.Close()
				return n, errors.Wrapf(err, "failed to write %s", path)
			}
			n++
		}
	}
	return n, w.Close()
}

// FormatFromPath maps .csv to csv and everything else to jsonl.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSONL
}
