package task

import "time"

// Task is a unit of resumable work.
//
// Resume performs one bounded increment of work and returns. It is only ever called by one
// worker at a time, but not always by the same one.
//
// Progress returns a snapshot of how far along the task is. It may be called concurrently
// with Resume, so implementations guard their mutable state themselves.
//
// IsComplete reports whether the task reached a terminal state and agrees with Progress.
//
// Result may be called once, after IsComplete returns true. Calling it earlier or twice
// panics.
type Task[P, R any] interface {
	Resume()
	Progress() P
	IsComplete() bool
	Result() R
}

// Erased is the type-erased counterpart of a Task. It lets a single queue hold tasks with
// different progress and result types.
type Erased interface {
	Resume()
	IsComplete() bool
	ProgressAny() any
	ResultAny() any
	WaitingUntil() time.Time
}

// Waiter is implemented by tasks that have nothing to do until a point in time, like a Retry
// waiting out its backoff. The scheduler requeues a waiting task behind the others.
type Waiter interface {
	WaitingUntil() time.Time
}

// WaitingUntil returns the time before which t has nothing to do. It is the zero time when t
// does not implement Waiter.
func WaitingUntil(t any) time.Time {
	if w, ok := t.(Waiter); ok {
		return w.WaitingUntil()
	}
	return time.Time{}
}

// Result carries the outcome of a task that can fail.
type Result[T any] struct {
	Data T
	Err  error
}

// Erase wraps t into its Erased counterpart.
// Downcasting the values returned by ProgressAny and ResultAny back to P and R is the
// caller's job.
func Erase[P, R any](t Task[P, R]) Erased {
	return erased[P, R]{t: t}
}

type erased[P, R any] struct {
	t Task[P, R]
}

func (e erased[P, R]) Resume()          { e.t.Resume() }
func (e erased[P, R]) IsComplete() bool { return e.t.IsComplete() }
func (e erased[P, R]) ProgressAny() any { return e.t.Progress() }
func (e erased[P, R]) ResultAny() any   { return e.t.Result() }

func (e erased[P, R]) WaitingUntil() time.Time { return WaitingUntil(e.t) }
