// Package services implements the business logic layer of taskengine.
//
// Services sit between the HTTP handlers (or the CLI) and the worker pool and store. Each
// service encapsulates one concern and manages its own state where it has any.
//
// # Service Dependency Graph
//
//	Handlers / CLI
//	    │
//	    ▼
//	Services Layer
//	    ├── Loader ─────────► Scheduler, LoadStore
//	    ├── Monitor ────────► Scheduler
//	    ├── HistoryService ─► Store
//	    └── Journal ◄─────── Scheduler (observer) ──► HistoryStore
//
// # Loader
//
// Loader reads files on the worker pool and hashes their content. Each load is one
// scheduled task built from three chained stages:
//
//	Then(Then(Retry(stat), FileRead), Func(sha256))
//
// State Machine:
//
//	┌─────────┐    ┌─────────┐    ┌─────────┐    ┌───────────┐
//	│ Pending │───►│ Reading │───►│ Hashing │───►│ Completed │
//	└─────────┘    └─────────┘    └─────────┘    └───────────┘
//	                    │              │
//	                    ▼              ▼
//	               ┌─────────┐    ┌─────────┐
//	               │  Error  │    │ Failed  │ (task panicked)
//	               └─────────┘    └─────────┘
//
// Key behaviors:
//   - Start never blocks; it returns the id of the load (the id of its task)
//   - Status polls the future without blocking; the first call that sees the load complete
//     collects its result and, with a LoadStore, persists it
//   - Release drops the future: a load still queued is abandoned by the scheduler
//   - WithAwait(attempts, interval) makes a load wait for a file that does not exist yet
//
// Usage:
//
//	loader := services.NewLoader(sched, services.WithLoadStore(st.Loads()))
//	id, err := loader.Start(ctx, "/var/log/messages")
//	status, err := loader.Status(ctx, id)
//	err = loader.Release(ctx, id)
//
// # Journal
//
// Journal is the scheduler.Observer of the pool. It must never block the scheduler, so
// events go through a buffered channel to a single writer goroutine. When the buffer is full
// events are dropped and counted. Close flushes what is buffered.
//
//	journal := services.NewJournal(st.History(), cfg.Store.JournalBuffer)
//	sched, pool := scheduler.Spawn(cfg.Pool.Workers, scheduler.WithObserver(journal))
//	...
//	pool.Close()
//	journal.Close()
//
// # HistoryService
//
// HistoryService lists journal records with filtering and pagination. Total is counted
// without pagination:
//
//	result, err := history.List(ctx, services.HistoryListParams{
//	    Outcomes: []string{"abandoned"},
//	    Limit:    20,
//	})
//
// # Thread Safety
//
// Loader state is protected by a sync.Mutex, the journal by its channel. Monitor and
// HistoryService hold no state of their own.
package services
