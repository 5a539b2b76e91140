package services

import (
	"context"
	"time"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/store"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

type HistoryService struct {
	store *store.Store
}

func NewHistoryService(st *store.Store) *HistoryService {
	return &HistoryService{store: st}
}

type HistoryListParams struct {
	Outcomes   []string
	NamePrefix string
	Since      time.Time
	Limit      uint64
	Offset     uint64
}

type HistoryListResult struct {
	Records []models.TaskRecord
	Total   int
}

func (s *HistoryService) List(ctx context.Context, params HistoryListParams) (*HistoryListResult, error) {
	for _, o := range params.Outcomes {
		if _, err := models.ParseTaskOutcome(o); err != nil {
			return nil, srvErrors.NewInvalidArgumentError("outcome", err.Error())
		}
	}

	opts := s.buildListOptions(params)
	opts = append(opts, store.WithDefaultSort())
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	records, err := s.store.History().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// count without pagination
	total, err := s.store.History().Count(ctx, s.buildListOptions(params)...)
	if err != nil {
		return nil, err
	}

	return &HistoryListResult{
		Records: records,
		Total:   total,
	}, nil
}

func (s *HistoryService) Get(ctx context.Context, id string) (*models.TaskRecord, error) {
	return s.store.History().Get(ctx, id)
}

func (s *HistoryService) buildListOptions(params HistoryListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.Outcomes) > 0 {
		opts = append(opts, store.ByOutcomes(params.Outcomes...))
	}
	if params.NamePrefix != "" {
		opts = append(opts, store.ByNamePrefix(params.NamePrefix))
	}
	if !params.Since.IsZero() {
		opts = append(opts, store.FinishedSince(params.Since))
	}

	return opts
}
