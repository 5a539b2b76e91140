package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kubev2v/taskengine/internal/models"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

// LoadStore keeps the outcome of finished loads once their futures are gone.
type LoadStore struct {
	db QueryInterceptor
}

func NewLoadStore(db QueryInterceptor) *LoadStore {
	return &LoadStore{db: db}
}

// Save stores or updates a load. Only its final fields are kept.
func (s *LoadStore) Save(ctx context.Context, l models.LoadStatus) error {
	var (
		checksum sql.NullString
		errMsg   sql.NullString
		size     = l.Size
	)
	if l.Result != nil {
		checksum = nullString(l.Result.Checksum)
		size = l.Result.Size
	}
	if l.Error != nil {
		errMsg = nullString(l.Error.Error())
	}

	_, err := s.db.ExecContext(ctx, queryUpsertLoad, l.ID, l.Path, string(l.State), size, checksum, errMsg, l.CreatedAt)
	return err
}

func (s *LoadStore) Get(ctx context.Context, id string) (*models.LoadStatus, error) {
	var (
		l        models.LoadStatus
		state    string
		checksum sql.NullString
		errMsg   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, queryGetLoad, id).Scan(&l.ID, &l.Path, &state, &l.Size, &checksum, &errMsg, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewLoadNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}

	l.State = models.LoadState(state)
	if l.State == models.LoadStateCompleted {
		l.Read = l.Size
		l.Result = &models.LoadResult{Size: l.Size, Checksum: checksum.String}
	}
	if errMsg.Valid {
		l.Error = errors.New(errMsg.String)
	}

	return &l, nil
}

func (s *LoadStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, queryDeleteLoad, id)
	return err
}
