package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/taskengine/api/v1"
)

// GetWorkers returns the status of the worker pool
// (GET /workers)
func (h *Handler) GetWorkers(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewPoolStatusFromModel(h.monitor.Status()))
}
