// Package task defines the contract of resumable work and the tasks shipped with the engine.
//
// A task advances in bounded steps: a worker calls Resume, which does a little work and
// returns, and the scheduler requeues the task until IsComplete reports true. The owner of
// the task observes it through Progress and collects the outcome once with Result.
//
//	┌──────────┐  Resume   ┌──────────┐  Resume ... ┌──────────┐  Result (once)
//	│ created  │ ────────► │ running  │ ──────────► │ complete │ ──────────────►
//	└──────────┘           └──────────┘             └──────────┘
//
// # Shipped Tasks
//
//   - FileRead: reads a file in ChunkSize chunks, reporting bytes read and total size.
//   - Func: runs a plain function in a single Resume.
//   - Then: runs a task, builds a second task from its result and runs that one.
//   - Retry: repeats an attempt with backoff between failures. While it waits, Resume pauses
//     for at most MaxPause and the scheduler requeues it behind the other tasks (Waiter).
//
// # Type Erasure
//
// Erase turns any Task[P, R] into an Erased value whose progress and result are returned as
// any. The scheduler queues Erased values and the typed Future downcasts them back.
//
// # Usage Example
//
//	read := task.NewFileRead("/etc/hosts")
//	sum := task.NewThen[task.FileReadProgress, task.Result[[]byte], bool, int](read,
//	    func(r task.Result[[]byte]) task.Task[bool, int] {
//	        return task.Wrap(func() int { return len(r.Data) })
//	    })
//	for !sum.IsComplete() {
//	    sum.Resume()
//	}
//	n := sum.Result()
package task
