package scheduler

import (
	"runtime/debug"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Pool owns the worker goroutines of a Scheduler.
type Pool struct {
	s       *Scheduler
	workers map[int]*worker
	once    sync.Once
}

type worker struct {
	done chan struct{}
	exit WorkerExit
}

// Spawn creates a Scheduler and starts n workers on it.
// With n == 0 nothing runs tasks unless the caller drains the queue with RunOnce.
func Spawn(n int, opts ...Option) (*Scheduler, *Pool) {
	if n < 0 {
		panic("scheduler: negative worker count")
	}

	s := newScheduler(n, opts...)
	p := &Pool{
		s:       s,
		workers: make(map[int]*worker, n),
	}

	for id := range n {
		w := &worker{
			done: make(chan struct{}),
			exit: WorkerExit{ID: id},
		}
		p.workers[id] = w
		go p.run(id, w)
	}

	zap.S().Named("scheduler").Infow("worker pool started", "workers", n, "order", s.order.String())

	return s, p
}

func (p *Pool) run(id int, w *worker) {
	defer close(w.done)
	defer func() {
		p.s.setStatus(id, StatusStopped)
		if r := recover(); r != nil {
			w.exit.Panic = r
			if perr, ok := r.(*TaskPanicError); ok {
				w.exit.Stack = perr.Stack
			} else {
				w.exit.Stack = debug.Stack()
			}
			zap.S().Named("scheduler").Errorw("worker died", "worker", id, "panic", r)
		}
	}()

	p.s.work(id)
}

// Close stops the pool: it sets the quit flag, wakes every worker and waits for all of them
// to exit. Worker panics are logged, not propagated. Tasks still queued are left as they are.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.s.shutdown()

		for _, id := range p.ids() {
			w := p.workers[id]
			<-w.done

			if w.exit.Panicked() {
				zap.S().Named("scheduler").Errorw("worker exited with panic", "worker", id, "panic", w.exit.Panic, "stack", string(w.exit.Stack))
				continue
			}
			zap.S().Named("scheduler").Debugw("worker exited", "worker", id)
		}

		zap.S().Named("scheduler").Infow("worker pool stopped", "workers", len(p.workers))
	})
}

// Exits reports how each worker ended, ordered by id. It must be called after Close.
func (p *Pool) Exits() []WorkerExit {
	exits := make([]WorkerExit, 0, len(p.workers))
	for _, id := range p.ids() {
		w := p.workers[id]
		<-w.done
		exits = append(exits, w.exit)
	}
	return exits
}

func (p *Pool) ids() []int {
	ids := make([]int, 0, len(p.workers))
	for id := range p.workers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
