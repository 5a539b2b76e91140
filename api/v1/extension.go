package v1

import (
	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/util"
)

// NewPoolStatusFromModel converts a models.PoolStatus to an API PoolStatus.
func NewPoolStatusFromModel(m models.PoolStatus) PoolStatus {
	workers := make([]Worker, 0, len(m.Workers))
	for _, w := range m.Workers {
		workers = append(workers, Worker{Id: w.ID, State: string(w.State)})
	}

	return PoolStatus{
		Order:   m.Order,
		Queued:  m.Queued,
		Alive:   m.Alive(),
		Workers: workers,
	}
}

// NewLoadFromModel converts a models.LoadStatus to an API Load.
func NewLoadFromModel(m models.LoadStatus) Load {
	l := Load{
		Id:        m.ID,
		Path:      m.Path,
		State:     string(m.State),
		Read:      m.Read,
		Size:      m.Size,
		Percent:   util.Round(m.Percent()),
		CreatedAt: m.CreatedAt,
	}

	if m.Result != nil {
		l.Checksum = &m.Result.Checksum
	}
	if m.Error != nil {
		l.Error = util.Ptr(m.Error.Error())
	}

	return l
}

// NewTaskRecordFromModel converts a models.TaskRecord to an API TaskRecord.
func NewTaskRecordFromModel(m models.TaskRecord) TaskRecord {
	r := TaskRecord{
		Id:          m.ID,
		Name:        m.Name,
		Outcome:     string(m.Outcome),
		Worker:      m.Worker,
		Resumes:     m.Resumes,
		ScheduledAt: m.ScheduledAt,
		FinishedAt:  m.FinishedAt,
		DurationMs:  m.Duration().Milliseconds(),
	}

	if m.Error != "" {
		r.Error = util.Ptr(m.Error)
	}

	return r
}
