package scheduler

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
)

// Future is the caller's reference to a scheduled task.
//
// Dropping every Future of an incomplete task abandons it: the scheduler discards it the
// next time it pops it. Release drops a Future explicitly; a Future that is garbage
// collected is released as well.
type Future[P, R any] struct {
	h       *handle
	ref     *futureRef
	cleanup runtime.Cleanup
}

type futureRef struct {
	h        *handle
	released atomic.Bool
}

func (r *futureRef) release() {
	if r.released.CompareAndSwap(false, true) {
		r.h.release()
	}
}

// newFuture expects the caller to have accounted for the future's reference on h.
func newFuture[P, R any](h *handle) *Future[P, R] {
	ref := &futureRef{h: h}
	f := &Future[P, R]{h: h, ref: ref}
	f.cleanup = runtime.AddCleanup(f, func(r *futureRef) { r.release() }, ref)
	return f
}

// ID returns the task id.
func (f *Future[P, R]) ID() uuid.UUID {
	return f.h.id
}

// Name returns the task name given with WithName, or its id.
func (f *Future[P, R]) Name() string {
	return f.h.name
}

// Progress returns the current progress snapshot without blocking.
func (f *Future[P, R]) Progress() P {
	return f.h.task.ProgressAny().(P)
}

// Poll returns the current progress, or false once the Future was released or its result
// consumed.
func (f *Future[P, R]) Poll() (P, bool) {
	if f.ref.released.Load() {
		var zero P
		return zero, false
	}
	return f.Progress(), true
}

// IsComplete reports whether the scheduler saw the task complete (or panic).
func (f *Future[P, R]) IsComplete() bool {
	select {
	case <-f.h.done:
		return true
	default:
		return false
	}
}

// Done is closed when the task completed or panicked.
func (f *Future[P, R]) Done() <-chan struct{} {
	return f.h.done
}

// Err returns the panic of a task that panicked, nil otherwise.
func (f *Future[P, R]) Err() error {
	if !f.IsComplete() || f.h.panicErr == nil {
		return nil
	}
	return f.h.panicErr
}

// Wait blocks until the task completes and returns its result.
// The result can be taken once across all the clones of a Future: a second Wait panics, and
// so does waiting on a task that panicked or on a released Future. With no worker and no one
// calling RunOnce, Wait blocks forever.
func (f *Future[P, R]) Wait() R {
	f.mustHold("Wait")
	<-f.h.done
	return f.take()
}

// WaitContext is Wait bounded by ctx.
func (f *Future[P, R]) WaitContext(ctx context.Context) (R, error) {
	f.mustHold("WaitContext")
	select {
	case <-f.h.done:
		return f.take(), nil
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func (f *Future[P, R]) take() R {
	if f.h.panicErr != nil {
		panic(f.h.panicErr)
	}
	if !f.h.taken.CompareAndSwap(false, true) {
		panic("scheduler: result of task " + f.h.name + " already taken")
	}

	r := f.h.task.ResultAny().(R)
	f.Release()
	return r
}

// Release drops this Future. It is safe to call more than once.
func (f *Future[P, R]) Release() {
	f.cleanup.Stop()
	f.ref.release()
}

// Clone returns another Future on the same task, keeping it alive independently.
func (f *Future[P, R]) Clone() *Future[P, R] {
	f.mustHold("Clone")
	f.h.retain()
	return newFuture[P, R](f.h)
}

// mustHold panics when f was released: its task may have been discarded already.
func (f *Future[P, R]) mustHold(op string) {
	if f.ref.released.Load() {
		panic("scheduler: " + op + " called on a released future of task " + f.h.name)
	}
}
