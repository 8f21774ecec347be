package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	s.Logger = output.Discard()
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	run := newRun(at(0), model.StatusInProgress)
	loc, err := s.Save(ctx, run)
	require.NoError(t, err)
	assert.Contains(t, loc, run.ID)

	run.Status = model.StatusComplete
	run.Results[model.CategorySummarization] = []model.Result{{Model: "m1", Document: "d1.md", Success: true}}
	_, err = s.Save(ctx, run)
	require.NoError(t, err)

	loaded, err := s.Load(ctx, run.ID+".json")
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, loaded.Status)
	assert.True(t, loaded.HasResult(model.CategorySummarization, "m1", "d1.md"))

	var rows int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&rows))
	assert.Equal(t, 1, rows)

	_, err = s.Load(ctx, "benchmark-1999-01-01T00-00-00-000Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreScans(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	latest, err := s.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	oldInProgress := newRun(at(1), model.StatusInProgress)
	complete := newRun(at(2), model.StatusComplete)
	newInProgress := newRun(at(3), model.StatusInProgress)
	for _, r := range []*model.Run{complete, newInProgress, oldInProgress} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}
	_, err = s.DB.Exec(`INSERT INTO runs (id, status, created_at, body) VALUES (?, ?, ?, ?)`,
		model.NewRunID(at(9)), "in-progress", "2024-01-01T12:09:00.000Z", "{broken")
	require.NoError(t, err)

	latest, err = s.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newInProgress.ID, latest.ID)

	incomplete, err := s.LoadIncomplete(ctx)
	require.NoError(t, err)
	assert.Equal(t, newInProgress.ID, incomplete.ID)

	completed, err := s.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, complete.ID, completed[0].ID)

	_, err = s.Load(ctx, model.NewRunID(at(9)))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSQLiteStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs`)).
		WillReturnError(sql.ErrConnDone)

	s := NewSQLiteStore(db)
	_, err = s.Save(context.Background(), newRun(at(0), model.StatusInProgress))
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreLoadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM runs WHERE id = ?`)).
		WithArgs("benchmark-x").
		WillReturnError(sql.ErrNoRows)

	_, err = NewSQLiteStore(db).Load(context.Background(), "benchmark-x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, body FROM runs WHERE status = ?`)).
		WithArgs("in-progress").
		WillReturnError(sql.ErrConnDone)

	_, err = NewSQLiteStore(db).LoadIncomplete(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS runs`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewSQLiteStore(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
