package scheduler_test

import (
	"sync"
)

// recorder keeps the order in which tasks were resumed.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// stepTask completes after a fixed number of resumes. steps < 0 never completes.
type stepTask struct {
	name  string
	steps int
	rec   *recorder

	mu sync.Mutex
	n  int
}

func newStepTask(name string, steps int, rec *recorder) *stepTask {
	if rec == nil {
		rec = &recorder{}
	}
	return &stepTask{name: name, steps: steps, rec: rec}
}

func (t *stepTask) Resume() {
	t.mu.Lock()
	t.n++
	t.mu.Unlock()
	t.rec.add(t.name)
}

func (t *stepTask) Progress() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

func (t *stepTask) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps >= 0 && t.n >= t.steps
}

func (t *stepTask) Result() string {
	if !t.IsComplete() {
		panic("result before completion")
	}
	return t.name
}

// gateTask completes once its gate channel is closed.
type gateTask struct {
	gate    chan struct{}
	started chan struct{}
	once    sync.Once

	mu   sync.Mutex
	done bool
}

func newGateTask() *gateTask {
	return &gateTask{gate: make(chan struct{}), started: make(chan struct{})}
}

func (t *gateTask) Resume() {
	t.once.Do(func() { close(t.started) })
	select {
	case <-t.gate:
		t.mu.Lock()
		t.done = true
		t.mu.Unlock()
	default:
	}
}

func (t *gateTask) Progress() bool { return t.IsComplete() }

func (t *gateTask) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *gateTask) Result() bool { return t.IsComplete() }

// panicTask panics on its first resume.
type panicTask struct{}

func (panicTask) Resume()          { panic("boom") }
func (panicTask) Progress() bool   { return false }
func (panicTask) IsComplete() bool { return false }
func (panicTask) Result() int      { return 0 }
