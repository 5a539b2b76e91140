package models

type WorkerState string

const (
	WorkerStateIdle       WorkerState = "idle"
	WorkerStatePolling    WorkerState = "polling"
	WorkerStateWorking    WorkerState = "working"
	WorkerStateScheduling WorkerState = "scheduling"
	WorkerStateStopped    WorkerState = "stopped"
)

type WorkerStatus struct {
	ID    int
	State WorkerState
}

// PoolStatus is a diagnostics snapshot of the worker pool.
type PoolStatus struct {
	Order   string
	Queued  int
	Workers []WorkerStatus
}

// Alive returns the number of workers that did not stop.
func (p PoolStatus) Alive() int {
	n := 0
	for _, w := range p.Workers {
		if w.State != WorkerStateStopped {
			n++
		}
	}
	return n
}
