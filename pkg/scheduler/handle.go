package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kubev2v/taskengine/pkg/task"
)

// handle is the shared, reference counted wrapper around a scheduled task.
// Its holders are the queue (one reference, kept by the worker while it resumes the task)
// and every live Future.
type handle struct {
	id          uuid.UUID
	name        string
	task        task.Erased
	scheduledAt time.Time

	refs    atomic.Int32
	resumes atomic.Int64
	taken   atomic.Bool

	once     sync.Once
	done     chan struct{}
	panicErr *TaskPanicError
}

func newHandle(t task.Erased, name string) *handle {
	id := uuid.New()
	if name == "" {
		name = id.String()
	}
	return &handle{
		id:          id,
		name:        name,
		task:        t,
		scheduledAt: time.Now(),
		done:        make(chan struct{}),
	}
}

func (h *handle) retain() {
	h.refs.Add(1)
}

func (h *handle) release() {
	h.refs.Add(-1)
}

// shared reports whether someone besides the queue still holds the handle.
func (h *handle) shared() bool {
	return h.refs.Load() > 1
}

// finish closes done. perr is nil for a task that completed.
func (h *handle) finish(perr *TaskPanicError) {
	h.once.Do(func() {
		h.panicErr = perr
		close(h.done)
	})
}

func (h *handle) event(kind EventKind, worker int) Event {
	e := Event{
		TaskID:      h.id,
		Name:        h.name,
		Kind:        kind,
		Worker:      worker,
		Resumes:     h.resumes.Load(),
		ScheduledAt: h.scheduledAt,
		FinishedAt:  time.Now(),
	}
	if h.panicErr != nil {
		e.Err = h.panicErr
	}
	return e
}
