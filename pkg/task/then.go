package task

import (
	"sync"
	"time"
)

// Stage tells which task of a Then is active.
type Stage int

const (
	StageFirst Stage = iota
	StageSecond
)

func (s Stage) String() string {
	switch s {
	case StageFirst:
		return "first"
	case StageSecond:
		return "second"
	default:
		return "unknown"
	}
}

// ThenProgress reports the progress of the active stage.
// First is only meaningful in StageFirst and Second only in StageSecond.
type ThenProgress[P1, P2 any] struct {
	Stage  Stage
	First  P1
	Second P2
}

// Then runs first to completion, builds a second task from its result and runs that one.
// Only one of the two tasks is live at a time.
type Then[P1, R1, P2, R2 any] struct {
	first Task[P1, R1]
	// next is consumed when first completes.
	next func(R1) Task[P2, R2]

	mu     sync.Mutex
	second Task[P2, R2]
	done   bool
}

// NewThen chains first and the task built by next from first's result.
func NewThen[P1, R1, P2, R2 any](first Task[P1, R1], next func(R1) Task[P2, R2]) *Then[P1, R1, P2, R2] {
	return &Then[P1, R1, P2, R2]{
		first: first,
		next:  next,
	}
}

// Resume drives the active stage. The call that completes the first task builds the second
// one but does not resume it.
func (t *Then[P1, R1, P2, R2]) Resume() {
	t.mu.Lock()
	second, done := t.second, t.done
	t.mu.Unlock()

	if done {
		return
	}

	if second != nil {
		second.Resume()
		if second.IsComplete() {
			t.mu.Lock()
			t.done = true
			t.mu.Unlock()
		}
		return
	}

	t.first.Resume()
	if !t.first.IsComplete() {
		return
	}

	next := t.next
	t.next = nil
	built := next(t.first.Result())

	t.mu.Lock()
	t.second = built
	t.mu.Unlock()
}

func (t *Then[P1, R1, P2, R2]) Progress() ThenProgress[P1, P2] {
	t.mu.Lock()
	second := t.second
	t.mu.Unlock()

	if second != nil {
		return ThenProgress[P1, P2]{Stage: StageSecond, Second: second.Progress()}
	}
	return ThenProgress[P1, P2]{Stage: StageFirst, First: t.first.Progress()}
}

// WaitingUntil forwards the wait of the active stage.
func (t *Then[P1, R1, P2, R2]) WaitingUntil() time.Time {
	t.mu.Lock()
	second, done := t.second, t.done
	t.mu.Unlock()

	switch {
	case done:
		return time.Time{}
	case second != nil:
		return WaitingUntil(second)
	default:
		return WaitingUntil(t.first)
	}
}

func (t *Then[P1, R1, P2, R2]) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Then[P1, R1, P2, R2]) Result() R2 {
	t.mu.Lock()
	second, done := t.second, t.done
	t.mu.Unlock()

	if !done {
		panic("task: Then.Result called before completion")
	}
	return second.Result()
}
