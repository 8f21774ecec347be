/*
PURPOSE:
  Scheduler/Executor: drives the task matrix through the benchmark registry
  with bounded parallelism, per-task retry, incremental persistence, progress
  reporting and resume-skip.

REQUIREMENTS:
  User-specified:
  - Run every (category, model, document) once; never re-run a recorded triple.
  - At most Concurrency tasks running; the rest wait in submission order.
  - Save the run after every completed task so a crash loses at most in-flight work.
  - A task that keeps failing is recorded as failed; the run continues.

  Implementation-discovered:
  - Progress callbacks fire after the save, so a reader never sees progress
    ahead of what is on disk.
  - Cancellation must leave the run resumable: in-flight results are dropped.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run)
  - Uses: internal/benchmark (Registry), internal/store, internal/model, internal/docs

ERROR HANDLING:
  - Per-task failures become failed Result records, never errors.
  - Store failures, unknown categories and missing documents abort the invocation.
  - Context cancellation returns ctx.Err() with the run left in-progress.

IMPLEMENTATION RULES:
  - One mutex guards append + save + counter + progress. Computation runs outside it.
  - A failed save rolls the append back before the error reaches the caller.
  - The scheduler only writes the base fields of a Result.

USAGE:
  r := &engine.Runner{Registry: reg, Store: st, Models: cfg.Models, Documents: docs}
  run, err := r.Run(ctx, engine.DefaultOptions())

SELF-HEALING INSTRUCTIONS:
  - If progress totals jump on resume, check BuildTasks ordering and the category union.

RELATED FILES:
  - internal/engine/matrix.go
  - internal/engine/retry.go
  - internal/store/store.go

MAINTENANCE:
  - Update Options when adding scheduler knobs; mirror them in cli/run.go.
*/

package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/daryltucker/dex-bench/internal/benchmark"
	"github.com/daryltucker/dex-bench/internal/docs"
	"github.com/daryltucker/dex-bench/internal/model"
	"github.com/daryltucker/dex-bench/internal/output"
	"github.com/daryltucker/dex-bench/internal/store"
)

// ErrMissingDocument means a resumed run names a document that is no longer loaded.
var ErrMissingDocument = errors.New("document missing from docs directory")

// Progress is reported once per committed task.
type Progress struct {
	Task      model.Task
	Result    model.Result
	Completed int
	Total     int
}

// RetryEvent is reported before each retry of a task.
type RetryEvent struct {
	Task    model.Task
	Attempt int // the attempt that just failed, starting at 1
	Retries int
	Err     error
	Delay   time.Duration
}

// Options control one scheduler invocation.
type Options struct {
	// Categories to run. Empty means every registered category for a new run,
	// or the resumed run's categories.
	Categories []model.Category
	// ResumeFrom continues an existing run instead of creating one.
	ResumeFrom *model.Run
	// Concurrency is the maximum number of running tasks. 0 means 1.
	Concurrency int
	// Retries is the number of extra attempts after the first failure.
	Retries int
	// RetryDelay seeds the exponential backoff between attempts. 0 retries immediately.
	RetryDelay time.Duration

	// OnProgress is called under the commit lock, after the run is saved.
	OnProgress func(Progress)
	// OnRetry may be called from several goroutines at once.
	OnRetry func(RetryEvent)
}

// DefaultOptions returns sequential execution with three retries.
func DefaultOptions() Options {
	return Options{Concurrency: 1, Retries: 3}
}

// Runner executes benchmark runs.
type Runner struct {
	Registry  *benchmark.Registry
	Store     store.Store
	Models    []string
	Documents []model.Document
	Logger    *slog.Logger
	Now       func() time.Time
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return output.Logger
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run creates or resumes a run, executes every task not yet recorded, then
// computes stats and marks the run complete.
func (r *Runner) Run(ctx context.Context, opts Options) (*model.Run, error) {
	if opts.Concurrency == 0 {
		opts.Concurrency = 1
	}
	if opts.Concurrency < 0 {
		return nil, errors.Newf("concurrency must be at least 1, got %d", opts.Concurrency)
	}
	if opts.Retries < 0 {
		return nil, errors.Newf("retries must be non-negative, got %d", opts.Retries)
	}

	run, documents, err := r.prepare(opts)
	if err != nil {
		return nil, err
	}
	if err := r.Registry.Validate(run.Categories); err != nil {
		return nil, err
	}

	run.Invocations = append(run.Invocations, model.Invocation{
		ID:          uuid.NewString(),
		StartedAt:   r.now().UTC(),
		Resumed:     opts.ResumeFrom != nil,
		Concurrency: opts.Concurrency,
		Retries:     opts.Retries,
	})
	if _, err := r.Store.Save(ctx, run); err != nil {
		return nil, errors.Wrap(err, "failed to save run")
	}

	tasks := BuildTasks(run.Categories, run.Models, documents)
	total := len(tasks)
	pending := make([]model.Task, 0, total)
	for _, t := range tasks {
		if !run.HasResult(t.Category, t.Model, t.Document.Name) {
			pending = append(pending, t)
		}
	}
	completed := total - len(pending)

	log := r.logger().With("run", run.ID)
	log.Info("Starting benchmark run",
		"tasks", total, "completed", completed, "concurrency", opts.Concurrency, "retries", opts.Retries)

	var mu sync.Mutex
	commit := func(task model.Task, res model.Result) error {
		mu.Lock()
		defer mu.Unlock()

		prev := run.Results[task.Category]
		run.Results[task.Category] = append(prev, res)
		if _, err := r.Store.Save(context.WithoutCancel(ctx), run); err != nil {
			// The returned run must match what is on disk.
			run.Results[task.Category] = prev
			return errors.Wrapf(err, "failed to save run after %s/%s/%s", task.Category, task.Model, task.Document.Name)
		}
		completed++
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Task: task, Result: res, Completed: completed, Total: total})
		}
		return nil
	}

	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range pending {
		b, _ := r.Registry.Get(task.Category)
		// Acquire here, not inside the goroutine, so tasks start in submission order.
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		if gctx.Err() != nil {
			sem.Release(1)
			break
		}
		task := task
		g.Go(func() error {
			defer sem.Release(1)
			res, err := r.execute(gctx, log, b, task, opts)
			if err != nil {
				return err
			}
			return commit(task, res)
		})
	}
	if err := g.Wait(); err != nil {
		return run, err
	}
	if err := ctx.Err(); err != nil {
		return run, err
	}

	run.Stats = make(map[model.Category]model.Stats)
	for _, c := range run.Categories {
		results := run.Results[c]
		if len(results) == 0 {
			continue
		}
		b, _ := r.Registry.Get(c)
		run.Stats[c] = b.CalculateStats(results, run.Models)
	}
	run.Status = model.StatusComplete

	if _, err := r.Store.Save(ctx, run); err != nil {
		return run, errors.Wrap(err, "failed to save completed run")
	}
	log.Info("Benchmark run complete", "results", run.CompletedCount())
	return run, nil
}

// prepare creates a new run or rebuilds the resumed one, and resolves the
// run's document names to loaded documents.
func (r *Runner) prepare(opts Options) (*model.Run, []model.Document, error) {
	if opts.ResumeFrom == nil {
		categories := opts.Categories
		if len(categories) == 0 {
			categories = r.Registry.Categories()
		}
		run := model.NewRun(r.now(), r.Models, docs.Names(r.Documents), categories)
		return run, append([]model.Document(nil), r.Documents...), nil
	}

	run := opts.ResumeFrom.Clone()
	run.Status = model.StatusInProgress
	run.Categories = UnionCategories(run.Categories, opts.Categories)
	if run.Results == nil {
		run.Results = make(map[model.Category][]model.Result)
	}

	byName := make(map[string]model.Document, len(r.Documents))
	for _, d := range r.Documents {
		byName[d.Name] = d
	}
	documents := make([]model.Document, 0, len(run.Documents))
	for _, name := range run.Documents {
		d, ok := byName[name]
		if !ok {
			return nil, nil, errors.WithHint(errors.Wrapf(ErrMissingDocument, "run %s needs %q", run.ID, name),
				"restore the document or start a fresh run")
		}
		documents = append(documents, d)
	}
	return run, documents, nil
}

// UnionCategories keeps base order and appends unseen extras. Resumed runs
// use it to fold newly requested categories into their category set.
func UnionCategories(base, extra []model.Category) []model.Category {
	seen := make(map[model.Category]bool, len(base)+len(extra))
	out := make([]model.Category, 0, len(base)+len(extra))
	for _, list := range [][]model.Category{base, extra} {
		for _, c := range list {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// execute runs the attempt loop for one task. It only returns an error when
// ctx is done; exhausted retries produce a failed result.
func (r *Runner) execute(ctx context.Context, log *slog.Logger, b benchmark.Benchmark, task model.Task, opts Options) (model.Result, error) {
	maxAttempts := opts.Retries + 1
	bo := newBackOff(opts.RetryDelay)

	for n := 1; ; n++ {
		a := runAttempt(ctx, b, task, n)
		if err := ctx.Err(); err != nil {
			return model.Result{}, err
		}

		switch classify(a, maxAttempts) {
		case outcomeSuccess:
			return finalResult(task, a), nil
		case outcomeExhausted:
			log.Warn("Task failed",
				"category", task.Category, "model", task.Model, "document", task.Document.Name,
				"attempts", n, "error", a.err)
			return finalResult(task, a), nil
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			delay = 0
		}
		log.Warn("Retrying task",
			"category", task.Category, "model", model.ShortModel(task.Model), "document", task.Document.Name,
			"attempt", n, "retries", opts.Retries, "delay", delay, "error", a.err)
		if opts.OnRetry != nil {
			opts.OnRetry(RetryEvent{Task: task, Attempt: n, Retries: opts.Retries, Err: a.err, Delay: delay})
		}
		if err := sleep(ctx, delay); err != nil {
			return model.Result{}, err
		}
	}
}
