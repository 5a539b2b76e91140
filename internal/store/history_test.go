package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/store"
	"github.com/kubev2v/taskengine/internal/store/migrations"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

func newRecord(id, name string, outcome models.TaskOutcome, finishedAt time.Time) models.TaskRecord {
	return models.TaskRecord{
		ID:          id,
		Name:        name,
		Outcome:     outcome,
		Worker:      1,
		Resumes:     3,
		ScheduledAt: finishedAt.Add(-time.Second),
		FinishedAt:  finishedAt,
	}
}

var _ = Describe("HistoryStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty history
		// When we get a record
		// Then it should return a ResourceNotFoundError
		It("should return ResourceNotFoundError when the record does not exist", func() {
			// Act
			_, err := s.History().Get(ctx, "missing")

			// Assert
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given a saved record with an error message
		// When we get it back
		// Then every field should round trip
		It("should return a saved record", func() {
			// Arrange
			now := time.Now().UTC().Truncate(time.Millisecond)
			rec := newRecord("t1", "boom", models.TaskOutcomePanicked, now)
			rec.Worker = 2
			rec.Error = "task boom panicked: oops"
			Expect(s.History().Save(ctx, rec)).To(Succeed())

			// Act
			got, err := s.History().Get(ctx, "t1")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("boom"))
			Expect(got.Outcome).To(Equal(models.TaskOutcomePanicked))
			Expect(got.Worker).To(Equal(2))
			Expect(got.Resumes).To(BeEquivalentTo(3))
			Expect(got.Error).To(Equal("task boom panicked: oops"))
			Expect(got.FinishedAt).To(BeTemporally("~", now, time.Millisecond))
			Expect(got.Duration()).To(BeNumerically("~", time.Second, time.Millisecond))
		})

		It("should reject a duplicate id", func() {
			rec := newRecord("t1", "a", models.TaskOutcomeCompleted, time.Now())
			Expect(s.History().Save(ctx, rec)).To(Succeed())

			Expect(s.History().Save(ctx, rec)).NotTo(Succeed())
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			base := time.Now().UTC().Truncate(time.Second)
			records := []models.TaskRecord{
				newRecord("1", "load-a", models.TaskOutcomeCompleted, base.Add(1*time.Second)),
				newRecord("2", "load-b", models.TaskOutcomeAbandoned, base.Add(2*time.Second)),
				newRecord("3", "sum-a", models.TaskOutcomeCompleted, base.Add(3*time.Second)),
				newRecord("4", "load-c", models.TaskOutcomePanicked, base.Add(4*time.Second)),
				newRecord("5", "sum-b", models.TaskOutcomeCompleted, base.Add(5*time.Second)),
			}
			for _, r := range records {
				Expect(s.History().Save(ctx, r)).To(Succeed())
			}
		})

		ids := func(records []models.TaskRecord) []string {
			out := make([]string, 0, len(records))
			for _, r := range records {
				out = append(out, r.ID)
			}
			return out
		}

		It("should list the most recent records first", func() {
			records, err := s.History().List(ctx, store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(ids(records)).To(Equal([]string{"5", "4", "3", "2", "1"}))
		})

		It("should filter by outcome", func() {
			records, err := s.History().List(ctx, store.ByOutcomes("abandoned", "panicked"), store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(ids(records)).To(Equal([]string{"4", "2"}))
		})

		It("should filter by name prefix", func() {
			records, err := s.History().List(ctx, store.ByNamePrefix("sum-"), store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(ids(records)).To(Equal([]string{"5", "3"}))
		})

		It("should ignore empty filters", func() {
			count, err := s.History().Count(ctx, store.ByOutcomes(), store.ByNamePrefix(""), store.FinishedSince(time.Time{}))

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(5))
		})

		// Given five records
		// When we page through them two at a time
		// Then each page holds the expected records and the count ignores pagination
		It("should paginate", func() {
			page, err := s.History().List(ctx, store.WithDefaultSort(), store.WithLimit(2), store.WithOffset(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(page)).To(Equal([]string{"3", "2"}))

			count, err := s.History().Count(ctx, store.ByOutcomes("completed"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(3))
		})
	})

	Context("Concurrent writes", func() {
		It("should handle concurrent saves from multiple goroutines", func() {
			const numGoroutines = 20
			var wg sync.WaitGroup
			errs := make(chan error, numGoroutines)

			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					rec := newRecord(fmt.Sprintf("t%d", idx), "concurrent", models.TaskOutcomeCompleted, time.Now())
					if err := s.History().Save(ctx, rec); err != nil {
						errs <- fmt.Errorf("goroutine %d: %w", idx, err)
					}
				}(i)
			}

			wg.Wait()
			close(errs)

			var all []error
			for err := range errs {
				all = append(all, err)
			}
			Expect(all).To(BeEmpty())

			count, err := s.History().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(numGoroutines))
		})
	})
})
