/*
PURPOSE:
  Run State Store: durable whole-run records keyed by run id.
  Latest-run, lookup-by-id and "find an incomplete run" are read-time scans
  over the stored runs; there is no separate index.

REQUIREMENTS:
  User-specified:
  - Save after every task completion without ever leaving a torn record.
  - Resume the newest in-progress run.

  Implementation-discovered:
  - Runs written by earlier dex-bench builds must keep loading (same camelCase JSON body).
  - A corrupt run must never block resume of an older, intact one.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Save on create/resume/commit/complete), internal/cli
  - Backends: FileStore (default), SQLiteStore

ERROR HANDLING:
  - ErrNotFound / ErrCorrupt for lookup by id.
  - Corrupt records are skipped and logged during scans.

IMPLEMENTATION RULES:
  - Save must be idempotent for the same run id.
  - Callers serialize Save calls for one run; the store does not.

USAGE:
  st, err := store.Open(cfg)
  run, err := st.LoadIncomplete(ctx)

RELATED FILES:
  - internal/store/file.go
  - internal/store/sqlite.go
*/

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/config"
	"github.com/daryltucker/dex-bench/internal/model"
)

var (
	// ErrNotFound means no stored run matches the identifier.
	ErrNotFound = errors.New("run not found")
	// ErrCorrupt means the stored record exists but cannot be parsed.
	ErrCorrupt = errors.New("corrupt run record")
)

// Store persists benchmark runs.
type Store interface {
	// Save writes the full run and returns where it was written.
	Save(ctx context.Context, run *model.Run) (string, error)
	// LoadLatest returns the newest run regardless of status, or nil.
	LoadLatest(ctx context.Context) (*model.Run, error)
	// Load returns the run with the given id (or, for file stores, path).
	Load(ctx context.Context, idOrPath string) (*model.Run, error)
	// LoadIncomplete returns the newest in-progress run, or nil.
	LoadIncomplete(ctx context.Context) (*model.Run, error)
	// ListCompleted returns every complete run, newest first.
	ListCompleted(ctx context.Context) ([]*model.Run, error)
	Close() error
}

// Open returns the backend selected by cfg.Store.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case "", config.StoreFile:
		return NewFileStore(cfg.ResultsDir), nil
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", cfg.SQLitePath)
		}
		return OpenSQLiteStore(cfg.SQLitePath)
	default:
		return nil, errors.Newf("unknown store backend %q", cfg.Store)
	}
}

func encodeRun(run *model.Run) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode run %s", run.ID)
	}
	return data, nil
}

func decodeRun(name string, data []byte) (*model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrCorrupt, "failed to parse run %s", name), err)
	}
	if run.ID == "" {
		return nil, errors.Wrapf(ErrCorrupt, "run %s has no id", name)
	}
	if run.Results == nil {
		run.Results = make(map[model.Category][]model.Result)
	}
	if run.Stats == nil {
		run.Stats = make(map[model.Category]model.Stats)
	}
	return &run, nil
}
