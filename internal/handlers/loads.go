package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/taskengine/api/v1"
)

// ListLoads returns every load tracked in memory
// (GET /loads)
func (h *Handler) ListLoads(c *gin.Context) {
	loads := h.loader.List(c.Request.Context())

	resp := v1.LoadList{Loads: make([]v1.Load, 0, len(loads))}
	for _, l := range loads {
		resp.Loads = append(resp.Loads, v1.NewLoadFromModel(l))
	}

	c.JSON(http.StatusOK, resp)
}

// CreateLoad schedules the load of a file
// (POST /loads)
func (h *Handler) CreateLoad(c *gin.Context) {
	if !h.limiter.Allow() {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusTooManyRequests, v1.Error{Error: "too many loads, retry later"})
		return
	}

	var req v1.CreateLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid request body: " + err.Error()})
		return
	}

	id, err := h.loader.Start(c.Request.Context(), req.Path)
	if err != nil {
		abort(c, "load_handler", "failed to start load", err)
		return
	}

	zap.S().Named("load_handler").Debugw("load accepted", "id", id, "path", req.Path)
	c.Header("Location", c.FullPath()+"/"+id)
	c.JSON(http.StatusAccepted, v1.LoadCreated{Id: id})
}

// GetLoad returns the status of a load without waiting for it
// (GET /loads/{id})
func (h *Handler) GetLoad(c *gin.Context, id string) {
	status, err := h.loader.Status(c.Request.Context(), id)
	if err != nil {
		abort(c, "load_handler", "failed to get load", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewLoadFromModel(*status))
}

// DeleteLoad releases a load, abandoning it if it is still running
// (DELETE /loads/{id})
func (h *Handler) DeleteLoad(c *gin.Context, id string) {
	if err := h.loader.Release(c.Request.Context(), id); err != nil {
		abort(c, "load_handler", "failed to delete load", err)
		return
	}

	c.Status(http.StatusNoContent)
}
