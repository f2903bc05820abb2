package crud

import (
	"context"
	"sync/atomic"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
)

// Task is an in-flight mutation the caller may abandon. Cancel cancels the
// task's context and marks any later result stale; Wait then reports
// domain.ErrCanceled regardless of what the store returned.
type Task[R any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	stale  atomic.Bool
	res    R
	err    error
}

// Go runs fn on its own goroutine under a cancellable child of parent.
func Go[R any](parent context.Context, fn func(ctx context.Context) (R, error)) *Task[R] {
	ctx, cancel := context.WithCancel(parent)
	t := &Task[R]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.res, t.err = fn(ctx)
	}()
	return t
}

func (t *Task[R]) Cancel() {
	t.stale.Store(true)
	t.cancel()
}

// Done is closed once fn has returned.
func (t *Task[R]) Done() <-chan struct{} {
	return t.done
}

func (t *Task[R]) Wait() (R, error) {
	<-t.done
	if t.stale.Load() {
		var zero R
		return zero, domain.ErrCanceled
	}
	return t.res, t.err
}
