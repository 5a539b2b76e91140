package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kubev2v/taskengine/internal/models"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
	"github.com/kubev2v/taskengine/pkg/scheduler"
	"github.com/kubev2v/taskengine/pkg/task"
)

// LoadStore keeps finished loads.
type LoadStore interface {
	Save(ctx context.Context, l models.LoadStatus) error
	Get(ctx context.Context, id string) (*models.LoadStatus, error)
	Delete(ctx context.Context, id string) error
}

type (
	// AwaitProgress is the progress of the first two stages of a load: waiting for the file,
	// then reading it.
	AwaitProgress = task.ThenProgress[task.RetryProgress, task.FileReadProgress]
	// LoadProgress is the progress of a whole load.
	LoadProgress = task.ThenProgress[AwaitProgress, bool]
	// LoadOutcome is the result of a load task.
	LoadOutcome = task.Result[models.LoadResult]

	loadFuture = scheduler.Future[LoadProgress, LoadOutcome]
)

// NewLoadTask builds the pipeline of a load: wait for path to exist, read it chunk by chunk,
// then hash its content.
func NewLoadTask(path string, attempts int, interval time.Duration) task.Task[LoadProgress, LoadOutcome] {
	await := task.NewRetry[int64](attempts, func() (int64, error) {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}, task.WithBackOff(backoff.NewConstantBackOff(interval)))

	// a failed wait still goes through the read, which reports the open error
	read := task.NewThen[task.RetryProgress, task.Result[int64], task.FileReadProgress, task.Result[[]byte]](await,
		func(task.Result[int64]) task.Task[task.FileReadProgress, task.Result[[]byte]] {
			return task.NewFileRead(path)
		})

	return task.NewThen[AwaitProgress, task.Result[[]byte], bool, LoadOutcome](read,
		func(r task.Result[[]byte]) task.Task[bool, LoadOutcome] {
			return task.Wrap(func() LoadOutcome {
				if r.Err != nil {
					return LoadOutcome{Err: r.Err}
				}
				sum := sha256.Sum256(r.Data)
				return LoadOutcome{Data: models.LoadResult{
					Size:     int64(len(r.Data)),
					Checksum: hex.EncodeToString(sum[:]),
				}}
			})
		})
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithAwait lets a load wait for its file: the file is looked up at most attempts times,
// interval apart.
func WithAwait(attempts int, interval time.Duration) LoaderOption {
	return func(l *Loader) {
		l.attempts = attempts
		l.interval = interval
	}
}

// WithLoadStore persists finished loads so they outlive their future.
func WithLoadStore(s LoadStore) LoaderOption {
	return func(l *Loader) {
		l.store = s
	}
}

// Loader reads and hashes files on the worker pool and tracks them by id.
type Loader struct {
	scheduler *scheduler.Scheduler
	store     LoadStore
	attempts  int
	interval  time.Duration

	mu    sync.Mutex
	loads map[string]*load
}

type load struct {
	id        string
	path      string
	createdAt time.Time
	future    *loadFuture
	final     *models.LoadStatus
	persisted bool
}

func NewLoader(s *scheduler.Scheduler, opts ...LoaderOption) *Loader {
	l := &Loader{
		scheduler: s,
		attempts:  1,
		interval:  100 * time.Millisecond,
		loads:     make(map[string]*load),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start schedules the load of path and returns its id. It does not block.
func (l *Loader) Start(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", srvErrors.NewInvalidArgumentError("path", "must not be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", srvErrors.NewInvalidArgumentError("path", err.Error())
	}

	f := scheduler.Schedule[LoadProgress, LoadOutcome](l.scheduler, NewLoadTask(abs, l.attempts, l.interval),
		scheduler.WithName("load:"+filepath.Base(abs)))

	ld := &load{
		id:        f.ID().String(),
		path:      abs,
		createdAt: time.Now().UTC(),
		future:    f,
	}

	l.mu.Lock()
	l.loads[ld.id] = ld
	l.mu.Unlock()

	zap.S().Named("loader").Infow("load started", "id", ld.id, "path", abs)

	return ld.id, nil
}

// Status returns the state of a load without blocking. A load that completed is collected
// on the first call that sees it complete, and persisted if a store is set.
func (l *Loader) Status(ctx context.Context, id string) (*models.LoadStatus, error) {
	l.mu.Lock()
	ld, ok := l.loads[id]
	if !ok {
		l.mu.Unlock()
		return l.stored(ctx, id)
	}
	status := ld.statusLocked()
	persist := ld.final != nil && !ld.persisted
	ld.persisted = ld.final != nil
	l.mu.Unlock()

	if persist {
		l.persist(ctx, status)
	}

	return &status, nil
}

// Wait blocks until the load finishes or ctx is done.
func (l *Loader) Wait(ctx context.Context, id string) (*models.LoadStatus, error) {
	l.mu.Lock()
	ld, ok := l.loads[id]
	l.mu.Unlock()

	if !ok {
		return l.stored(ctx, id)
	}

	select {
	case <-ld.future.Done():
		return l.Status(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// List returns the loads tracked in memory, oldest first.
func (l *Loader) List(ctx context.Context) []models.LoadStatus {
	l.mu.Lock()
	statuses := make([]models.LoadStatus, 0, len(l.loads))
	var toPersist []models.LoadStatus
	for _, ld := range l.loads {
		s := ld.statusLocked()
		if ld.final != nil && !ld.persisted {
			ld.persisted = true
			toPersist = append(toPersist, s)
		}
		statuses = append(statuses, s)
	}
	l.mu.Unlock()

	for _, s := range toPersist {
		l.persist(ctx, s)
	}

	slices.SortFunc(statuses, func(a, b models.LoadStatus) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return statuses
}

// Release forgets a load. A load still running is abandoned: the scheduler drops it the next
// time it pops it.
func (l *Loader) Release(ctx context.Context, id string) error {
	l.mu.Lock()
	ld, ok := l.loads[id]
	if ok {
		delete(l.loads, id)
	}
	l.mu.Unlock()

	if ok {
		if ld.final == nil {
			zap.S().Named("loader").Infow("load abandoned", "id", id, "path", ld.path)
		}
		ld.future.Release()
		if l.store != nil {
			return l.store.Delete(ctx, id)
		}
		return nil
	}

	if _, err := l.stored(ctx, id); err != nil {
		return err
	}
	return l.store.Delete(ctx, id)
}

// Close releases every load still tracked.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, ld := range l.loads {
		ld.future.Release()
		delete(l.loads, id)
	}
}

func (l *Loader) stored(ctx context.Context, id string) (*models.LoadStatus, error) {
	if l.store == nil {
		return nil, srvErrors.NewLoadNotFoundError(id)
	}
	return l.store.Get(ctx, id)
}

func (l *Loader) persist(ctx context.Context, s models.LoadStatus) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(ctx, s); err != nil {
		zap.S().Named("loader").Errorw("failed to persist load", "id", s.ID, "error", err)
	}
}

// statusLocked must be called with the loader lock held.
func (ld *load) statusLocked() models.LoadStatus {
	if ld.final != nil {
		return *ld.final
	}

	status := models.LoadStatus{
		ID:        ld.id,
		Path:      ld.path,
		CreatedAt: ld.createdAt,
	}

	if ld.future.IsComplete() {
		ld.final = ld.collect(status)
		return *ld.final
	}

	p := ld.future.Progress()
	switch {
	case p.Stage == task.StageSecond:
		status.State = models.LoadStateHashing
	case p.First.Stage == task.StageFirst:
		status.State = models.LoadStatePending
	default:
		status.State = models.LoadStateReading
		status.Read = p.First.Second.Read
		status.Size = p.First.Second.Size
	}

	return status
}

func (ld *load) collect(status models.LoadStatus) *models.LoadStatus {
	if err := ld.future.Err(); err != nil {
		ld.future.Release()
		status.State = models.LoadStateFailed
		status.Error = err
		zap.S().Named("loader").Errorw("load failed", "id", ld.id, "path", ld.path, "error", err)
		return &status
	}

	res := ld.future.Wait()
	if res.Err != nil {
		status.State = models.LoadStateError
		status.Error = res.Err
		zap.S().Named("loader").Warnw("load error", "id", ld.id, "path", ld.path, "error", res.Err)
		return &status
	}

	status.State = models.LoadStateCompleted
	status.Read = res.Data.Size
	status.Size = res.Data.Size
	status.Result = &res.Data
	zap.S().Named("loader").Infow("load completed", "id", ld.id, "path", ld.path, "size", res.Data.Size)

	return &status
}
