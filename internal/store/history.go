package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/taskengine/internal/models"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

// HistoryStore persists the journal of tasks that left the scheduler.
type HistoryStore struct {
	db QueryInterceptor
}

func NewHistoryStore(db QueryInterceptor) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Save(ctx context.Context, r models.TaskRecord) error {
	query, args, err := sq.Insert("task_history").
		Columns("id", "name", "outcome", "worker", "resumes", "scheduled_at", "finished_at", "error").
		Values(r.ID, r.Name, r.Outcome.Value(), r.Worker, r.Resumes, r.ScheduledAt, r.FinishedAt, nullString(r.Error)).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *HistoryStore) Get(ctx context.Context, id string) (*models.TaskRecord, error) {
	r, err := scanTaskRecord(s.db.QueryRowContext(ctx, queryGetTaskRecord, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewTaskRecordNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *HistoryStore) List(ctx context.Context, opts ...ListOption) ([]models.TaskRecord, error) {
	builder := sq.Select("id", "name", "outcome", "worker", "resumes", "scheduled_at", "finished_at", "error").
		From("task_history")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TaskRecord
	for rows.Next() {
		r, err := scanTaskRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}

	return records, rows.Err()
}

func (s *HistoryStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("task_history")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRecord(row scanner) (*models.TaskRecord, error) {
	var (
		r       models.TaskRecord
		outcome string
		errMsg  sql.NullString
	)
	err := row.Scan(&r.ID, &r.Name, &outcome, &r.Worker, &r.Resumes, &r.ScheduledAt, &r.FinishedAt, &errMsg)
	if err != nil {
		return nil, err
	}

	r.Outcome, err = models.ParseTaskOutcome(outcome)
	if err != nil {
		return nil, err
	}
	r.Error = errMsg.String

	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByOutcomes(outcomes ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(outcomes) == 0 {
			return b
		}
		return b.Where(sq.Eq{"outcome": outcomes})
	}
}

func ByNamePrefix(prefix string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if prefix == "" {
			return b
		}
		return b.Where(sq.Like{"name": prefix + "%"})
	}
}

func FinishedSince(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if t.IsZero() {
			return b
		}
		return b.Where(sq.GtOrEq{"finished_at": t})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithDefaultSort orders records from the most recently finished.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("finished_at DESC", "id")
	}
}
