/*
PURPOSE:
  File backend of the Run State Store: one JSON file per run in the results directory.

REQUIREMENTS:
  User-specified:
  - results/<run id>.json, loadable by id, file name or path.

  Implementation-discovered:
  - A crash mid-write must not destroy the previous state: write temp, sync, rename.
  - Run ids embed the timestamp, so newest-first is a sort on names.

ERROR HANDLING:
  - Missing file: ErrNotFound. Unparseable file: ErrCorrupt.
  - Scans log and skip corrupt files.

IMPLEMENTATION RULES:
  - Temp files start with '.' so the benchmark-*.json glob never sees them.

RELATED FILES:
  - internal/store/store.go
  - internal/store/sqlite.go
*/

package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
)

// FileStore keeps one <id>.json per run in Dir.
type FileStore struct {
	Dir    string
	Logger *slog.Logger
}

// NewFileStore returns a store rooted at dir. The directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, Logger: output.Logger}
}

// Path is where the run with id is stored.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

// Save writes the run to a temp file and renames it over <id>.json.
func (s *FileStore) Save(_ context.Context, run *model.Run) (string, error) {
	data, err := encodeRun(run)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create results directory %s", s.Dir)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+run.ID+"-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "failed to write run %s", run.ID)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "failed to sync run %s", run.ID)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close run %s", run.ID)
	}

	path := s.Path(run.ID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrapf(err, "failed to replace %s", path)
	}
	return path, nil
}

// Load accepts a run id, a file name in Dir, or a path to a run file.
func (s *FileStore) Load(_ context.Context, idOrPath string) (*model.Run, error) {
	path := s.resolve(idOrPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s", idOrPath)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return decodeRun(path, data)
}

func (s *FileStore) resolve(idOrPath string) string {
	if strings.ContainsRune(idOrPath, filepath.Separator) || strings.HasSuffix(idOrPath, ".json") {
		if _, err := os.Stat(idOrPath); err == nil {
			return idOrPath
		}
	}
	return s.Path(strings.TrimSuffix(filepath.Base(idOrPath), ".json"))
}

// LoadLatest returns the newest readable run, or nil.
func (s *FileStore) LoadLatest(ctx context.Context) (*model.Run, error) {
	var latest *model.Run
	err := s.scan(ctx, func(run *model.Run) bool {
		latest = run
		return false
	})
	return latest, err
}

// LoadIncomplete returns the newest in-progress run, or nil.
func (s *FileStore) LoadIncomplete(ctx context.Context) (*model.Run, error) {
	var found *model.Run
	err := s.scan(ctx, func(run *model.Run) bool {
		if run.Status == model.StatusInProgress {
			found = run
			return false
		}
		return true
	})
	return found, err
}

// ListCompleted returns every complete run, newest first.
func (s *FileStore) ListCompleted(ctx context.Context) ([]*model.Run, error) {
	var runs []*model.Run
	err := s.scan(ctx, func(run *model.Run) bool {
		if run.Status == model.StatusComplete {
			runs = append(runs, run)
		}
		return true
	})
	return runs, err
}

func (s *FileStore) Close() error { return nil }

// scan visits readable runs newest-first until visit returns false.
func (s *FileStore) scan(ctx context.Context, visit func(*model.Run) bool) error {
	ids, err := s.ids()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := s.Path(id)
		data, err := os.ReadFile(path)
		if err != nil {
			s.Logger.Warn("Skipping unreadable run", "path", path, "error", err)
			continue
		}
		run, err := decodeRun(path, data)
		if err != nil {
			s.Logger.Warn("Skipping corrupt run", "path", path, "error", err)
			continue
		}
		if !visit(run) {
			return nil
		}
	}
	return nil
}

// ids lists stored run ids ordered by their embedded timestamp, newest first.
func (s *FileStore) ids() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, model.RunIDPrefix+"*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "bad run pattern")
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sortNewestFirst(ids)
	return ids, nil
}

// sortNewestFirst orders ids by embedded timestamp; ids without one go last.
func sortNewestFirst(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ti, okI := model.ParseRunTime(ids[i])
		tj, okJ := model.ParseRunTime(ids[j])
		switch {
		case okI && okJ:
			if ti.Equal(tj) {
				return ids[i] > ids[j]
			}
			return ti.After(tj)
		case okI != okJ:
			return okI
		default:
			return ids[i] > ids[j]
		}
	})
}
