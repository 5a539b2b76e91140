package scheduler

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"go.uber.org/zap"

	"github.com/kubev2v/taskengine/pkg/task"
)

// Scheduler is the scheduling context shared by the producers and the workers of a pool.
type Scheduler struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    *doublylinkedlist.List
	order    Order
	quit     atomic.Bool
	statuses []atomic.Int32
	observer Observer
}

func newScheduler(workers int, opts ...Option) *Scheduler {
	cfg := &config{order: OrderLIFO}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Scheduler{
		queue:    doublylinkedlist.New(),
		order:    cfg.order,
		statuses: make([]atomic.Int32, workers),
		observer: cfg.observer,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Schedule queues t and returns a Future on it. It never blocks.
// The task stays queued while at least one Future on it is alive; once every Future is
// released the next pop discards it.
func Schedule[P, R any](s *Scheduler, t task.Task[P, R], opts ...ScheduleOption) *Future[P, R] {
	cfg := &scheduleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	h := newHandle(task.Erase(t), cfg.name)
	// one reference for the queue, one for the future
	h.refs.Store(2)
	f := newFuture[P, R](h)

	if s.quit.Load() {
		zap.S().Named("scheduler").Warnw("task scheduled after shutdown, it will not run", "task", h.name)
	}

	s.push(h)
	zap.S().Named("scheduler").Debugw("task scheduled", "task", h.name, "id", h.id)

	return f
}

// RunOnce pops one task and resumes it on the calling goroutine.
// It returns false when there was nothing to run. It is meant for pools spawned without
// workers; a panic in the task propagates to the caller.
func (s *Scheduler) RunOnce() bool {
	s.mu.Lock()
	h, ok := s.popLocked()
	s.mu.Unlock()

	if !ok {
		return false
	}

	s.step(-1, h)
	return true
}

// Len returns the number of queued tasks, abandoned ones included until they are popped.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Size()
}

// Workers returns the number of worker slots.
func (s *Scheduler) Workers() int {
	return len(s.statuses)
}

// Order returns the pop order.
func (s *Scheduler) Order() Order {
	return s.order
}

// Statuses returns a snapshot of every worker status, indexed by worker id.
func (s *Scheduler) Statuses() []ThreadStatus {
	statuses := make([]ThreadStatus, len(s.statuses))
	for i := range s.statuses {
		statuses[i] = ThreadStatus(s.statuses[i].Load())
	}
	return statuses
}

func (s *Scheduler) setStatus(worker int, status ThreadStatus) {
	if worker < 0 || worker >= len(s.statuses) {
		return
	}
	s.statuses[worker].Store(int32(status))
}

func (s *Scheduler) push(h *handle) {
	s.mu.Lock()
	s.queue.Add(h)
	s.mu.Unlock()
	s.cond.Signal()
}

// pushBehind queues h at the end popped last, so a waiting task lets the others run first.
func (s *Scheduler) pushBehind(h *handle) {
	s.mu.Lock()
	if s.order == OrderFIFO {
		s.queue.Add(h)
	} else {
		s.queue.Insert(0, h)
	}
	s.mu.Unlock()
	s.cond.Signal()
}

// popLocked returns the next task still referenced by a Future, discarding abandoned ones
// on the way.
func (s *Scheduler) popLocked() (*handle, bool) {
	for !s.queue.Empty() {
		idx := s.queue.Size() - 1
		if s.order == OrderFIFO {
			idx = 0
		}

		v, _ := s.queue.Get(idx)
		s.queue.Remove(idx)

		h := v.(*handle)
		if h.shared() {
			return h, true
		}

		h.release()
		zap.S().Named("scheduler").Debugw("task abandoned", "task", h.name, "resumes", h.resumes.Load())
		s.notify(h.event(EventAbandoned, -1))
	}
	return nil, false
}

// next blocks until a task is available or the scheduler quits.
func (s *Scheduler) next(worker int) (*handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.quit.Load() {
			return nil, false
		}

		s.setStatus(worker, StatusPolling)
		if h, ok := s.popLocked(); ok {
			return h, true
		}

		s.setStatus(worker, StatusIdle)
		s.cond.Wait()
	}
}

// work is the worker loop. A panicking task ends it.
func (s *Scheduler) work(worker int) {
	for !s.quit.Load() {
		h, ok := s.next(worker)
		if !ok {
			return
		}
		s.step(worker, h)
	}
}

// step resumes h once, then either requeues it or finishes it.
func (s *Scheduler) step(worker int, h *handle) {
	defer func() {
		if r := recover(); r != nil {
			perr := &TaskPanicError{
				TaskID: h.id,
				Name:   h.name,
				Value:  r,
				Stack:  debug.Stack(),
			}
			h.finish(perr)
			h.release()
			s.notify(h.event(EventPanicked, worker))
			panic(perr)
		}
	}()

	s.setStatus(worker, StatusWorking)
	if !h.task.IsComplete() {
		h.resumes.Add(1)
		h.task.Resume()
	}

	s.setStatus(worker, StatusScheduling)
	if !h.task.IsComplete() {
		if h.task.WaitingUntil().After(time.Now()) {
			s.pushBehind(h)
			return
		}
		s.push(h)
		return
	}

	h.finish(nil)
	h.release()
	zap.S().Named("scheduler").Debugw("task completed", "task", h.name, "worker", worker, "resumes", h.resumes.Load())
	s.notify(h.event(EventCompleted, worker))
}

func (s *Scheduler) notify(e Event) {
	if s.observer != nil {
		s.observer.Observe(e)
	}
}

func (s *Scheduler) shutdown() {
	s.quit.Store(true)
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}
