/*
PURPOSE:
  Exports benchmark results to a CSV file, one row per Result.

REQUIREMENTS:
  User-specified:
  - Results exportable for spreadsheets.

  Implementation-discovered:
  - Category payload columns stay empty for other categories and for failures.
  - Flush after every row so a partial export is still readable.

ARCHITECTURE INTEGRATION:
  - Called by: output.Export (cli export)
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write.
  - Mutex-guarded so rows can be written from several goroutines.

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.Write(run.ID, result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion together.

RELATED FILES:
  - internal/model/types.go
  - internal/output/export.go

MAINTENANCE:
  - Update Write() mapping when Result payloads change.
*/

package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/daryltucker/dex-bench/internal/model"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{
	"run_id", "category", "model", "document", "document_tokens", "duration_ms", "success", "error",
	"input_tokens", "output_tokens", "total_tokens", "tokens_per_second",
	"entity_types", "extraction_count", "relationship_count",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	closer io.Closer
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cw, err := newCSVWriter(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return cw, nil
}

func newCSVWriter(w io.Writer, c io.Closer) (*CSVWriter, error) {
	cw := &CSVWriter{closer: c, writer: csv.NewWriter(w)}
	if err := cw.writer.Write(CSVHeader); err != nil {
		return nil, err
	}
	cw.writer.Flush()
	return cw, cw.writer.Error()
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(runID string, r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		runID,
		string(r.Type),
		r.Model,
		r.Document,
		strconv.Itoa(r.DocumentTokens),
		strconv.FormatFloat(r.DurationMs, 'f', 3, 64),
		strconv.FormatBool(r.Success),
		r.Error,
		"", "", "", "",
		"", "", "",
	}
	if p := r.Summarization; p != nil {
		record[8] = strconv.Itoa(p.InputTokens)
		record[9] = strconv.Itoa(p.OutputTokens)
		record[10] = strconv.Itoa(p.TotalTokens)
		record[11] = strconv.FormatFloat(p.TokensPerSecond, 'f', 2, 64)
	}
	if p := r.StructuredOutput; p != nil {
		record[12] = strings.Join(p.EntityTypes, ";")
		record[13] = strconv.Itoa(p.ExtractionCount)
		record[14] = strconv.Itoa(p.RelationshipCount)
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close flushes and closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if cw.closer == nil {
		return cw.writer.Error()
	}
	return cw.closer.Close()
}
