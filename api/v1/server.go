package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerInterface is implemented by the API handler.
type ServerInterface interface {
	// (GET /workers)
	GetWorkers(c *gin.Context)
	// (GET /loads)
	ListLoads(c *gin.Context)
	// (POST /loads)
	CreateLoad(c *gin.Context)
	// (GET /loads/{id})
	GetLoad(c *gin.Context, id string)
	// (DELETE /loads/{id})
	DeleteLoad(c *gin.Context, id string)
	// (GET /history)
	ListHistory(c *gin.Context, params ListHistoryParams)
	// (GET /history/{id})
	GetHistoryRecord(c *gin.Context, id string)
}

// ServerInterfaceWrapper extracts path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) GetWorkers(c *gin.Context) {
	w.Handler.GetWorkers(c)
}

func (w *ServerInterfaceWrapper) ListLoads(c *gin.Context) {
	w.Handler.ListLoads(c)
}

func (w *ServerInterfaceWrapper) CreateLoad(c *gin.Context) {
	w.Handler.CreateLoad(c)
}

func (w *ServerInterfaceWrapper) GetLoad(c *gin.Context) {
	w.Handler.GetLoad(c, c.Param("id"))
}

func (w *ServerInterfaceWrapper) DeleteLoad(c *gin.Context) {
	w.Handler.DeleteLoad(c, c.Param("id"))
}

func (w *ServerInterfaceWrapper) ListHistory(c *gin.Context) {
	var params ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid query parameters: " + err.Error()})
		return
	}
	w.Handler.ListHistory(c, params)
}

func (w *ServerInterfaceWrapper) GetHistoryRecord(c *gin.Context) {
	w.Handler.GetHistoryRecord(c, c.Param("id"))
}

// RegisterHandlers adds every API route to router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.GET("/workers", w.GetWorkers)
	router.GET("/loads", w.ListLoads)
	router.POST("/loads", w.CreateLoad)
	router.GET("/loads/:id", w.GetLoad)
	router.DELETE("/loads/:id", w.DeleteLoad)
	router.GET("/history", w.ListHistory)
	router.GET("/history/:id", w.GetHistoryRecord)
}
