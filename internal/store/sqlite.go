/*
PURPOSE:
  SQLite backend of the Run State Store. The run body is the same JSON the
  file backend writes; id, status and created_at are columns for the scans.

ARCHITECTURE INTEGRATION:
  - Selected by: store.Open when store: sqlite

ERROR HANDLING:
  - sql.ErrNoRows: ErrNotFound. Unparseable body: ErrCorrupt.
  - Scans log and skip corrupt rows.

IMPLEMENTATION RULES:
  - One open connection; Save is a single upsert so it is atomic per run.

SELF-HEALING INSTRUCTIONS:
  - "database is locked": another dex-bench is writing; _busy_timeout covers short overlaps only.

RELATED FILES:
  - internal/store/store.go
*/

package store

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"

	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	body       TEXT NOT NULL
)`

// createdAtLayout sorts lexicographically in time order.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// SQLiteStore keeps each run as one row whose body is the run JSON.
type SQLiteStore struct {
	DB     *sql.DB
	Path   string
	Logger *slog.Logger
}

// OpenSQLiteStore opens (creating if needed) the database at path and migrates it.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %s", path)
	}
	db.SetMaxOpenConns(1)

	s := NewSQLiteStore(db)
	s.Path = path
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open database. Call Migrate before first use.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db, Logger: output.Logger}
}

// Migrate creates the runs table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, createRunsTable); err != nil {
		return errors.Wrap(err, "failed to create runs table")
	}
	return nil
}

// Save upserts the run row.
func (s *SQLiteStore) Save(ctx context.Context, run *model.Run) (string, error) {
	body, err := encodeRun(run)
	if err != nil {
		return "", err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO runs (id, status, created_at, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, body = excluded.body`,
		run.ID, string(run.Status), run.Timestamp.UTC().Format(createdAtLayout), string(body))
	if err != nil {
		return "", errors.Wrapf(err, "failed to save run %s", run.ID)
	}
	return s.Path + "#" + run.ID, nil
}

// Load looks a run up by id. A trailing .json or directory is ignored so file
// names from the file backend work too.
func (s *SQLiteStore) Load(ctx context.Context, idOrPath string) (*model.Run, error) {
	id := strings.TrimSuffix(filepath.Base(idOrPath), ".json")

	var body string
	err := s.DB.QueryRowContext(ctx, `SELECT body FROM runs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load run %s", id)
	}
	return decodeRun(id, []byte(body))
}

// LoadLatest returns the newest readable run, or nil.
func (s *SQLiteStore) LoadLatest(ctx context.Context) (*model.Run, error) {
	runs, err := s.query(ctx, 1, `SELECT id, body FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// LoadIncomplete returns the newest in-progress run, or nil.
func (s *SQLiteStore) LoadIncomplete(ctx context.Context) (*model.Run, error) {
	runs, err := s.query(ctx, 1,
		`SELECT id, body FROM runs WHERE status = ? ORDER BY created_at DESC, id DESC`,
		string(model.StatusInProgress))
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// ListCompleted returns every complete run, newest first.
func (s *SQLiteStore) ListCompleted(ctx context.Context) ([]*model.Run, error) {
	return s.query(ctx, 0,
		`SELECT id, body FROM runs WHERE status = ? ORDER BY created_at DESC, id DESC`,
		string(model.StatusComplete))
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

// query decodes rows in order, skipping corrupt bodies, and stops after
// limit decoded runs (0 means no limit).
func (s *SQLiteStore) query(ctx context.Context, limit int, q string, args ...any) ([]*model.Run, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, errors.Wrap(err, "failed to scan run row")
		}
		run, err := decodeRun(id, []byte(body))
		if err != nil {
			s.Logger.Warn("Skipping corrupt run", "id", id, "error", err)
			continue
		}
		runs = append(runs, run)
		if limit > 0 && len(runs) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate runs")
	}
	return runs, nil
}
