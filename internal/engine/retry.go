/*
PURPOSE:
  The per-task attempt state machine used by the scheduler.

REQUIREMENTS:
  User-specified:
  - Retry a failing task up to Retries extra times, waiting between attempts.
  - After the last attempt record a failed Result instead of aborting the run.

  Implementation-discovered:
  - A Result with Success=false counts as a failed attempt, same as an error.
  - A panicking benchmark must not take down the worker pool.

ARCHITECTURE INTEGRATION:
  - Called by: Runner.execute (internal/engine/runner.go)
  - Uses: cenkalti/backoff for the delay sequence

ERROR HANDLING:
  - Errors and recovered panics become attempt.err; only ctx cancellation escapes.

IMPLEMENTATION RULES:
  - classify is pure; keep all timing and logging in Runner.execute.

SELF-HEALING INSTRUCTIONS:
  - If retries happen without delay, check newBackOff: delay <= 0 means ZeroBackOff.

RELATED FILES:
  - internal/engine/runner.go
*/

package engine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/benchmark"
	"github.com/daryltucker/dex-bench/internal/model"
)

// outcome classifies one attempt of a task.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryable
	outcomeExhausted
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeRetryable:
		return "retryable"
	default:
		return "exhausted"
	}
}

// attempt is the record of one try: its number, what the implementation
// returned and, for failed tries, the reason.
type attempt struct {
	n         int
	result    model.Result
	hasResult bool
	err       error
	elapsed   time.Duration
}

// classify decides what happens after attempt a out of maxAttempts.
// Both returned errors and success=false results are failures.
func classify(a attempt, maxAttempts int) outcome {
	if a.err == nil {
		return outcomeSuccess
	}
	if a.n < maxAttempts {
		return outcomeRetryable
	}
	return outcomeExhausted
}

// runAttempt runs the benchmark once. A panic inside the implementation is
// turned into an error so it costs an attempt instead of the process.
func runAttempt(ctx context.Context, b benchmark.Benchmark, task model.Task, n int) (a attempt) {
	a.n = n
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			a.hasResult = false
			a.err = errors.Newf("panic in %s benchmark: %v", task.Category, p)
		}
		a.elapsed = time.Since(start)
	}()

	res, err := b.Run(ctx, task.Model, task.Document)
	switch {
	case err != nil:
		a.err = err
	case !res.Success:
		a.result, a.hasResult = res, true
		msg := res.Error
		if msg == "" {
			msg = "task reported failure"
		}
		a.err = errors.New(msg)
	default:
		a.result, a.hasResult = res, true
	}
	return a
}

// finalResult is what gets recorded for the last attempt: the implementation's
// own result when it produced one, otherwise a failed result built from the error.
func finalResult(task model.Task, a attempt) model.Result {
	res := a.result
	if !a.hasResult {
		res = model.Result{
			DocumentTokens: benchmark.CountTokens(task.Document.Content),
			DurationMs:     float64(a.elapsed.Microseconds()) / 1000.0,
			Success:        false,
			Error:          a.err.Error(),
		}
	}
	res.Type = task.Category
	res.Model = task.Model
	res.Document = task.Document.Name
	return res
}

// newBackOff returns the delay policy between attempts. A zero delay retries
// immediately; otherwise the delay grows exponentially from delay.
func newBackOff(delay time.Duration) backoff.BackOff {
	if delay <= 0 {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.MaxInterval = 32 * delay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
