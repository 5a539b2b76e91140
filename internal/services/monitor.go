package services

import (
	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/pkg/scheduler"
)

// Monitor reports the state of the worker pool.
type Monitor struct {
	scheduler *scheduler.Scheduler
}

func NewMonitor(s *scheduler.Scheduler) *Monitor {
	return &Monitor{scheduler: s}
}

func (m *Monitor) Status() models.PoolStatus {
	statuses := m.scheduler.Statuses()

	workers := make([]models.WorkerStatus, 0, len(statuses))
	for id, s := range statuses {
		workers = append(workers, models.WorkerStatus{ID: id, State: workerState(s)})
	}

	return models.PoolStatus{
		Order:   m.scheduler.Order().String(),
		Queued:  m.scheduler.Len(),
		Workers: workers,
	}
}

func workerState(s scheduler.ThreadStatus) models.WorkerState {
	switch s {
	case scheduler.StatusPolling:
		return models.WorkerStatePolling
	case scheduler.StatusWorking:
		return models.WorkerStateWorking
	case scheduler.StatusScheduling:
		return models.WorkerStateScheduling
	case scheduler.StatusStopped:
		return models.WorkerStateStopped
	default:
		return models.WorkerStateIdle
	}
}
