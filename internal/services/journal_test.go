package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/services"
	"github.com/kubev2v/taskengine/internal/store"
	"github.com/kubev2v/taskengine/internal/store/migrations"
	"github.com/kubev2v/taskengine/pkg/scheduler"
	"github.com/kubev2v/taskengine/pkg/task"
)

type fakeWriter struct {
	mu      sync.Mutex
	records []models.TaskRecord
	block   chan struct{}
	started chan struct{}
	once    sync.Once
	err     error
}

func (w *fakeWriter) Save(_ context.Context, r models.TaskRecord) error {
	if w.started != nil {
		w.once.Do(func() { close(w.started) })
	}
	if w.block != nil {
		<-w.block
	}
	if w.err != nil {
		return w.err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, r)
	return nil
}

func (w *fakeWriter) list() []models.TaskRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.TaskRecord(nil), w.records...)
}

func newEvent(name string, kind scheduler.EventKind) scheduler.Event {
	now := time.Now()
	return scheduler.Event{
		TaskID:      uuid.New(),
		Name:        name,
		Kind:        kind,
		Worker:      0,
		Resumes:     1,
		ScheduledAt: now,
		FinishedAt:  now,
	}
}

var _ = Describe("Journal", func() {
	It("should write every observed event on close", func() {
		w := &fakeWriter{}
		j := services.NewJournal(w, 16)

		j.Observe(newEvent("a", scheduler.EventCompleted))
		j.Observe(newEvent("b", scheduler.EventAbandoned))
		j.Close()

		records := w.list()
		Expect(records).To(HaveLen(2))
		Expect(records[0].Outcome).To(Equal(models.TaskOutcomeCompleted))
		Expect(records[1].Outcome).To(Equal(models.TaskOutcomeAbandoned))
		Expect(j.Written()).To(BeEquivalentTo(2))
	})

	// Given a journal whose writer is stuck and whose buffer holds one event
	// When three events are observed
	// Then the third one is dropped instead of blocking the caller
	It("should drop events instead of blocking when the buffer is full", func() {
		// Arrange
		w := &fakeWriter{block: make(chan struct{}), started: make(chan struct{})}
		j := services.NewJournal(w, 1)

		// Act
		j.Observe(newEvent("a", scheduler.EventCompleted))
		Eventually(w.started).Should(BeClosed())
		j.Observe(newEvent("b", scheduler.EventCompleted))
		j.Observe(newEvent("c", scheduler.EventCompleted))

		// Assert
		Expect(j.Dropped()).To(BeEquivalentTo(1))

		close(w.block)
		j.Close()
		Expect(w.list()).To(HaveLen(2))
	})

	It("should drop events observed after close", func() {
		j := services.NewJournal(&fakeWriter{}, 4)
		j.Close()
		j.Close()

		j.Observe(newEvent("late", scheduler.EventCompleted))

		Expect(j.Dropped()).To(BeEquivalentTo(1))
	})

	It("should keep going when the writer fails", func() {
		w := &fakeWriter{err: errors.New("disk full")}
		j := services.NewJournal(w, 4)

		j.Observe(newEvent("a", scheduler.EventCompleted))
		j.Close()

		Expect(j.Written()).To(BeZero())
	})

	It("should carry the panic of a task into its record", func() {
		e := newEvent("boom", scheduler.EventPanicked)
		e.Err = &scheduler.TaskPanicError{TaskID: e.TaskID, Name: "boom", Value: "oops"}

		r := services.RecordFromEvent(e)

		Expect(r.ID).To(Equal(e.TaskID.String()))
		Expect(r.Outcome).To(Equal(models.TaskOutcomePanicked))
		Expect(r.Error).To(ContainSubstring("oops"))
	})

	// Given a pool observed by a journal backed by DuckDB
	// When tasks complete and one is abandoned
	// Then every one of them ends up in the history
	It("should journal a pool into the history store", func() {
		// Arrange
		ctx := context.Background()
		db, err := store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st := store.NewStore(db)

		j := services.NewJournal(st.History(), 64)
		s, pool := scheduler.Spawn(0, scheduler.WithObserver(j))

		// Act
		for range 3 {
			scheduler.Schedule[bool, int](s, task.Wrap(func() int { return 1 }), scheduler.WithName("sum"))
		}
		f := scheduler.Schedule[bool, int](s, task.Wrap(func() int { return 2 }), scheduler.WithName("dropped"))
		f.Release()
		for s.RunOnce() {
		}
		pool.Close()
		j.Close()

		// Assert
		count, err := st.History().Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(4))

		abandoned, err := st.History().List(ctx, store.ByOutcomes(string(models.TaskOutcomeAbandoned)))
		Expect(err).NotTo(HaveOccurred())
		Expect(abandoned).To(HaveLen(1))
		Expect(abandoned[0].Name).To(Equal("dropped"))
		Expect(abandoned[0].Worker).To(Equal(-1))
	})
})
