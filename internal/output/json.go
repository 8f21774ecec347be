/*
PURPOSE:
  Exports benchmark results to a JSON Lines file (NDJSON), one Result per line.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines streams better than one large array; each line carries its run id.

ARCHITECTURE INTEGRATION:
  - Called by: output.Export (cli export)
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("results.jsonl")
  w.Write(run.ID, result)
  w.Close()

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/daryltucker/dex-bench/internal/model"
)

// JSONRow is one exported line: the result plus the run it belongs to.
type JSONRow struct {
	RunID string `json:"runId"`
	model.Result
}

// JSONWriter handles writing results to a JSON Lines file.
type JSONWriter struct {
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{closer: f, encoder: json.NewEncoder(f)}, nil
}

// Write writes a single result as a JSON line.
func (jw *JSONWriter) Write(runID string, r model.Result) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(JSONRow{RunID: runID, Result: r})
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	if jw.closer == nil {
		return nil
	}
	return jw.closer.Close()
}
