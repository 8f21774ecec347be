package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/dex-bench/internal/config"
	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
)

func newRun(t time.Time, status model.Status) *model.Run {
	run := model.NewRun(t, []string{"m1"}, []string{"d1.md"}, []model.Category{model.CategorySummarization})
	run.Status = status
	return run
}

func at(minute int) time.Time {
	return time.Date(2024, 1, 1, 12, minute, 0, 0, time.UTC)
}

func newFileStore(t *testing.T) *FileStore {
	s := NewFileStore(filepath.Join(t.TempDir(), "results"))
	s.Logger = output.Discard()
	return s
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	run := newRun(at(0), model.StatusInProgress)
	run.Results[model.CategorySummarization] = []model.Result{{
		Type: model.CategorySummarization, Model: "m1", Document: "d1.md", DurationMs: 12.5, Success: true,
		Summarization: &model.SummarizationPayload{Summary: "short"},
	}}

	path, err := s.Save(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, run.ID+".json"), path)

	for _, ref := range []string{run.ID, run.ID + ".json", path} {
		loaded, err := s.Load(ctx, ref)
		require.NoError(t, err, ref)
		assert.Equal(t, run.ID, loaded.ID)
		assert.Equal(t, model.StatusInProgress, loaded.Status)
		require.Len(t, loaded.Results[model.CategorySummarization], 1)
		assert.Equal(t, "short", loaded.Results[model.CategorySummarization][0].Summarization.Summary)
	}

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	run := newRun(at(0), model.StatusInProgress)
	_, err := s.Save(ctx, run)
	require.NoError(t, err)

	run.Status = model.StatusComplete
	_, err = s.Save(ctx, run)
	require.NoError(t, err)

	loaded, err := s.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, loaded.Status)
}

func TestFileStoreLoadErrors(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	_, err := s.Load(ctx, "benchmark-2024-01-01T00-00-00-000Z")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.MkdirAll(s.Dir, 0755))
	bad := "benchmark-2024-01-01T00-00-00-001Z"
	require.NoError(t, os.WriteFile(s.Path(bad), []byte("{not json"), 0644))
	_, err = s.Load(ctx, bad)
	assert.ErrorIs(t, err, ErrCorrupt)

	noID := "benchmark-2024-01-01T00-00-00-002Z"
	require.NoError(t, os.WriteFile(s.Path(noID), []byte(`{"status": "complete"}`), 0644))
	_, err = s.Load(ctx, noID)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStoreEmpty(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	latest, err := s.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	incomplete, err := s.LoadIncomplete(ctx)
	require.NoError(t, err)
	assert.Nil(t, incomplete)

	completed, err := s.ListCompleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestFileStoreScans(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	oldInProgress := newRun(at(1), model.StatusInProgress)
	complete := newRun(at(2), model.StatusComplete)
	newInProgress := newRun(at(3), model.StatusInProgress)
	newestComplete := newRun(at(4), model.StatusComplete)
	for _, r := range []*model.Run{complete, newestComplete, oldInProgress, newInProgress} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	// Newer than everything but unreadable: scans must skip it.
	corrupt := model.NewRunID(at(9))
	require.NoError(t, os.WriteFile(s.Path(corrupt), []byte("garbage"), 0644))

	latest, err := s.LoadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newestComplete.ID, latest.ID)

	incomplete, err := s.LoadIncomplete(ctx)
	require.NoError(t, err)
	require.NotNil(t, incomplete)
	assert.Equal(t, newInProgress.ID, incomplete.ID)

	completed, err := s.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, newestComplete.ID, completed[0].ID)
	assert.Equal(t, complete.ID, completed[1].ID)
}

func TestSortNewestFirst(t *testing.T) {
	ids := []string{
		"benchmark-garbage",
		model.NewRunID(at(1)),
		model.NewRunID(at(5)),
		model.NewRunID(at(3)),
	}
	sortNewestFirst(ids)
	assert.Equal(t, []string{
		model.NewRunID(at(5)),
		model.NewRunID(at(3)),
		model.NewRunID(at(1)),
		"benchmark-garbage",
	}, ids)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(&config.Config{Store: config.StoreFile, ResultsDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(&config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(dir, "db", "runs.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(&config.Config{Store: "postgres"})
	assert.Error(t, err)
}
