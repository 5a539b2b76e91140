package task

import "sync"

// Func adapts a synchronous function into a Task.
// The whole function runs in a single Resume, so long running functions hold their worker
// for as long as they run.
type Func[R any] struct {
	fn func() R

	mu     sync.Mutex
	done   bool
	taken  bool
	result R
}

// Wrap returns a task that calls fn once.
func Wrap[R any](fn func() R) *Func[R] {
	return &Func[R]{fn: fn}
}

func (f *Func[R]) Resume() {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	fn := f.fn
	f.mu.Unlock()

	r := fn()

	f.mu.Lock()
	f.result = r
	f.done = true
	f.fn = nil
	f.mu.Unlock()
}

// Progress is the completion flag.
func (f *Func[R]) Progress() bool {
	return f.IsComplete()
}

func (f *Func[R]) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *Func[R]) Result() R {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.done {
		panic("task: Func.Result called before completion")
	}
	if f.taken {
		panic("task: Func.Result called twice")
	}
	f.taken = true

	r := f.result
	var zero R
	f.result = zero
	return r
}
