package services

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/pkg/scheduler"
)

// HistoryWriter persists journal records.
type HistoryWriter interface {
	Save(ctx context.Context, r models.TaskRecord) error
}

// Journal is a scheduler.Observer writing every event to the history store.
//
// Observe never blocks: the scheduler may call it while holding its queue lock. Events are
// buffered on a channel and written by a single goroutine; when the buffer is full the event
// is dropped and counted.
type Journal struct {
	writer  HistoryWriter
	events  chan scheduler.Event
	done    chan struct{}
	dropped atomic.Int64
	written atomic.Int64

	mu     sync.RWMutex
	closed bool
}

func NewJournal(w HistoryWriter, buffer int) *Journal {
	j := &Journal{
		writer: w,
		events: make(chan scheduler.Event, buffer),
		done:   make(chan struct{}),
	}
	go j.run()
	return j
}

func (j *Journal) Observe(e scheduler.Event) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		j.dropped.Add(1)
		return
	}

	select {
	case j.events <- e:
	default:
		j.dropped.Add(1)
		zap.S().Named("journal").Warnw("journal buffer full, event dropped", "task", e.Name, "kind", e.Kind.String())
	}
}

func (j *Journal) run() {
	defer close(j.done)

	for e := range j.events {
		r := RecordFromEvent(e)
		if err := j.writer.Save(context.Background(), r); err != nil {
			zap.S().Named("journal").Errorw("failed to save task record", "task", r.Name, "id", r.ID, "error", err)
			continue
		}
		j.written.Add(1)
	}
}

// Close stops accepting events and waits until the buffered ones are written.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		<-j.done
		return
	}
	j.closed = true
	close(j.events)
	j.mu.Unlock()

	<-j.done
	zap.S().Named("journal").Infow("journal flushed", "written", j.written.Load(), "dropped", j.dropped.Load())
}

// Dropped returns the number of events that were not written.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Written returns the number of records saved so far.
func (j *Journal) Written() int64 {
	return j.written.Load()
}

func RecordFromEvent(e scheduler.Event) models.TaskRecord {
	r := models.TaskRecord{
		ID:          e.TaskID.String(),
		Name:        e.Name,
		Worker:      e.Worker,
		Resumes:     e.Resumes,
		ScheduledAt: e.ScheduledAt,
		FinishedAt:  e.FinishedAt,
	}

	switch e.Kind {
	case scheduler.EventCompleted:
		r.Outcome = models.TaskOutcomeCompleted
	case scheduler.EventAbandoned:
		r.Outcome = models.TaskOutcomeAbandoned
	case scheduler.EventPanicked:
		r.Outcome = models.TaskOutcomePanicked
	}

	if e.Err != nil {
		r.Error = e.Err.Error()
	}

	return r
}
