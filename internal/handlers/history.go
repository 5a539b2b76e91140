package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/taskengine/api/v1"
	"github.com/kubev2v/taskengine/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// keeps (page-1)*pageSize far from overflowing
	maxPage = 1_000_000
)

// ListHistory returns the task history with filtering and pagination
// (GET /history)
func (h *Handler) ListHistory(c *gin.Context, params v1.ListHistoryParams) {
	// Parse pagination
	if params.Page > maxPage {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("page must not exceed %d", maxPage)})
		return
	}
	page := 1
	if params.Page > 0 {
		page = params.Page
	}
	pageSize := defaultPageSize
	if params.PageSize > 0 {
		pageSize = min(params.PageSize, maxPageSize)
	}

	svcParams := services.HistoryListParams{
		Outcomes:   params.Outcome,
		NamePrefix: params.Name,
		Limit:      uint64(pageSize),
		Offset:     uint64((page - 1) * pageSize),
	}

	if params.Since != "" {
		since, err := time.Parse(time.RFC3339, params.Since)
		if err != nil {
			c.JSON(http.StatusBadRequest, v1.Error{Error: "since must be an RFC 3339 timestamp"})
			return
		}
		svcParams.Since = since
	}

	result, err := h.historySrv.List(c.Request.Context(), svcParams)
	if err != nil {
		abort(c, "history_handler", "failed to list history", err)
		return
	}

	// Calculate page count
	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	records := make([]v1.TaskRecord, 0, len(result.Records))
	for _, r := range result.Records {
		records = append(records, v1.NewTaskRecordFromModel(r))
	}

	c.JSON(http.StatusOK, v1.HistoryListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Records:   records,
	})
}

// GetHistoryRecord returns one entry of the task history
// (GET /history/{id})
func (h *Handler) GetHistoryRecord(c *gin.Context, id string) {
	record, err := h.historySrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, "history_handler", "failed to get task record", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewTaskRecordFromModel(*record))
}
