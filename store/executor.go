package store

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Executor bounds concurrent asynchronous I/O against a DataTable, in the
// spirit of pool.T's fixed-budget admission control. Unlike pool.T, which
// checks reusable values in and out of a channel-backed gate, Executor
// submits task bodies: there is nothing to recycle, only concurrency to
// bound. golang.org/x/sync/semaphore.Weighted is used instead of a raw
// channel gate so admission respects context cancellation.
type Executor struct {
	sem *semaphore.Weighted
}

// NewExecutor creates an executor admitting at most maxConcurrent
// in-flight tasks at a time.
func NewExecutor(maxConcurrent int64) *Executor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Executor{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Submit runs fn on a new goroutine once a slot is available, delivering
// its result on the returned channel. If ctx is cancelled before a slot
// frees up, the task never runs and the channel receives the cancellation
// error instead.
func (e *Executor) Submit(ctx context.Context, fn func(context.Context) (interface{}, error)) <-chan TaskResult {
	out := make(chan TaskResult, 1)
	go func() {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			out <- TaskResult{Err: err}
			close(out)
			return
		}
		defer e.sem.Release(1)
		v, err := fn(ctx)
		out <- TaskResult{Value: v, Err: err}
		close(out)
	}()
	return out
}

// TaskResult is what an Executor.Submit call eventually delivers.
type TaskResult struct {
	Value interface{}
	Err   error
}
