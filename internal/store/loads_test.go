package store_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/store"
	"github.com/kubev2v/taskengine/internal/store/migrations"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

var _ = Describe("LoadStore", func() {
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
		Expect(migrations.Run(ctx, db)).To(Succeed())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	It("should return ResourceNotFoundError for an unknown load", func() {
		_, err := s.Loads().Get(ctx, "missing")

		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	// Given a completed load
	// When it is saved and read back
	// Then its checksum and size are kept and it reads as fully read
	It("should keep a completed load", func() {
		// Arrange
		l := models.LoadStatus{
			ID:        "l1",
			Path:      "/tmp/data",
			State:     models.LoadStateCompleted,
			CreatedAt: time.Now().UTC(),
			Result:    &models.LoadResult{Size: 10000, Checksum: "abc"},
		}

		// Act
		Expect(s.Loads().Save(ctx, l)).To(Succeed())
		got, err := s.Loads().Get(ctx, "l1")

		// Assert
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State).To(Equal(models.LoadStateCompleted))
		Expect(got.Read).To(BeEquivalentTo(10000))
		Expect(got.Result).To(Equal(&models.LoadResult{Size: 10000, Checksum: "abc"}))
		Expect(got.Error).To(BeNil())
	})

	It("should keep the error of a failed load and upsert it", func() {
		l := models.LoadStatus{ID: "l2", Path: "/nope", State: models.LoadStateReading, CreatedAt: time.Now()}
		Expect(s.Loads().Save(ctx, l)).To(Succeed())

		l.State = models.LoadStateError
		l.Error = errors.New("open /nope: no such file or directory")
		Expect(s.Loads().Save(ctx, l)).To(Succeed())

		got, err := s.Loads().Get(ctx, "l2")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State).To(Equal(models.LoadStateError))
		Expect(got.Result).To(BeNil())
		Expect(got.Error).To(MatchError(ContainSubstring("no such file")))
	})

	It("should delete a load", func() {
		l := models.LoadStatus{ID: "l3", Path: "/tmp/x", State: models.LoadStateCompleted, CreatedAt: time.Now(), Result: &models.LoadResult{}}
		Expect(s.Loads().Save(ctx, l)).To(Succeed())

		Expect(s.Loads().Delete(ctx, "l3")).To(Succeed())

		_, err := s.Loads().Get(ctx, "l3")
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})
})
