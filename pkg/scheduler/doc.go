// Package scheduler implements a cooperative worker pool for resumable tasks.
//
// Tasks are not run to completion in one go. A worker pops a task, resumes it once and puts
// it back on the queue if it is not complete yet. Producers keep a Future on each task to
// poll its progress or wait for its result without taking any lock a worker holds.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                     Scheduler (shared context)                      │
//	│                                                                     │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Worker 0   │      │   Worker 1   │      │   Worker N   │       │
//	│  │  status slot │      │  status slot │      │  status slot │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	│         ▲  │                  ▲  │                  ▲  │            │
//	│     pop │  │ requeue      pop │  │ requeue      pop │  │ requeue    │
//	│         │  ▼                  │  ▼                  │  ▼            │
//	│  ┌─────────────────────────────────────────────────────────┐        │
//	│  │          Queue (mutex + condition variable)             │        │
//	│  │  [task1] [task2] [task3] ...  ◄── push / pop end        │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                               ▲                                     │
//	│                               │                                     │
//	│                     Schedule(s, task) ──► Future                    │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Core Components
//
// Scheduler:
//   - Holds the queue of type-erased task handles, the condition variable workers sleep
//     on, the quit flag and one status slot per worker
//   - Push and pop happen on the same end by default (LIFO); WithOrder(OrderFIFO) pops
//     from the other end
//   - RunOnce lets a caller drain the queue by hand, e.g. with a pool of zero workers
//
// Pool:
//   - Created by Spawn(n), owns the n worker goroutines keyed by id
//   - Close sets the quit flag, wakes every worker and joins them
//
// Future:
//   - Shares the task handle with the queue
//   - Progress/Poll read a progress snapshot without blocking
//   - Wait blocks until the task completes and takes its result, once
//
// # Worker Loop
//
//	for !quit {
//	    status = Polling
//	    h, ok := pop()            // discards abandoned tasks
//	    if !ok {
//	        status = Idle
//	        cond.Wait()           // woken by push or quit
//	        continue
//	    }
//	    status = Working
//	    h.Resume()
//	    status = Scheduling
//	    if h.WaitingUntil() > now {
//	        pushBehind(h)         // popped after every other task
//	    } else if !h.IsComplete() {
//	        push(h)               // resumed again later
//	    } else {
//	        close(h.done)         // wakes Future.Wait
//	    }
//	}
//
// Worker status transitions:
//
//	┌──────────┐  pop ok   ┌──────────┐  resumed  ┌────────────┐
//	│ Polling  │ ────────► │ Working  │ ────────► │ Scheduling │
//	└──────────┘           └──────────┘           └─────┬──────┘
//	  ▲     │ empty                                     │
//	  │     ▼                                           │
//	┌──────────┐                                        │
//	│   Idle   │                                        │
//	└──────────┘                                        │
//	  ▲                                                 │
//	  └─────────────────────────────────────────────────┘
//
// # Abandonment
//
// A task handle is reference counted: one reference for the queue, one per live Future.
// When a worker pops a handle whose only holder is the queue, it drops it without resuming
// it. This is the only way to cancel a task:
//
//	f := scheduler.Schedule[task.FileReadProgress, task.Result[[]byte]](s, task.NewFileRead(path))
//	f.Release()       // next pop discards the read
//
// Work already done by earlier resumes is not undone. Futures that are garbage collected
// without being released are released by a runtime cleanup.
//
// # Waiting
//
// Wait blocks on a channel closed by the worker that observed completion, so it never
// returns before the task is complete:
//
//	f := scheduler.Schedule[bool, int](s, task.Wrap(func() int { return 42 }))
//	v := f.Wait() // 42
//
// Select on Done() or use WaitContext to bound the wait.
//
// # Panics
//
// A task that panics in Resume kills the worker that resumed it. The pool does not start a
// replacement, so its capacity shrinks by one. The panic is reported when the pool is
// closed, and the task's Future panics with a *TaskPanicError when waited on.
//
// # Usage Example
//
//	s, pool := scheduler.Spawn(4)
//	defer pool.Close()
//
//	f := scheduler.Schedule[task.FileReadProgress, task.Result[[]byte]](s,
//	    task.NewFileRead("/var/log/messages"), scheduler.WithName("messages"))
//	for !f.IsComplete() {
//	    p := f.Progress()
//	    fmt.Printf("%d/%d\n", p.Read, p.Size)
//	    time.Sleep(10 * time.Millisecond)
//	}
//	res := f.Wait()
package scheduler
