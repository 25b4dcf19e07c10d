package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and which store backs the process.
type HealthHandler struct {
	storeKind string
}

func NewHealthHandler(storeKind string) *HealthHandler {
	return &HealthHandler{storeKind: storeKind}
}

// Root answers the bare liveness probe.
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Todo API is running")
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  h.storeKind,
	})
}
