package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	v1 "github.com/kubev2v/taskengine/api/v1"
	"github.com/kubev2v/taskengine/internal/services"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

type Handler struct {
	loader     *services.Loader
	monitor    *services.Monitor
	historySrv *services.HistoryService
	limiter    *rate.Limiter
}

// New returns the API handler. limiter throttles POST /loads; nil means no limit.
func New(loader *services.Loader, monitor *services.Monitor, historySrv *services.HistoryService, limiter *rate.Limiter) *Handler {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Handler{
		loader:     loader,
		monitor:    monitor,
		historySrv: historySrv,
		limiter:    limiter,
	}
}

// abort maps service errors to HTTP status codes.
func abort(c *gin.Context, logger string, msg string, err error) {
	switch {
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
	case srvErrors.IsInvalidArgumentError(err):
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
	case srvErrors.IsServiceUnavailableError(err):
		c.JSON(http.StatusServiceUnavailable, v1.Error{Error: err.Error()})
	default:
		zap.S().Named(logger).Errorw(msg, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: msg})
	}
}
