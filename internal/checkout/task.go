package checkout

import (
	"context"
	"time"
)

// Task is a unit of delayed work running on its own goroutine. The result is
// available once Done is closed.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn after delay. A context cancelled before the delay elapses
// ends the task with ctx.Err() and fn never runs.
func Go[T any](ctx context.Context, delay time.Duration, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				t.err = ctx.Err()
				return
			case <-timer.C:
			}
		}
		t.val, t.err = fn(ctx)
	}()
	return t
}

// Done is closed when the task has finished.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
