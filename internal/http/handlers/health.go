package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/config"
	"github.com/ideavault/ideavault-backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type ConfigHandler struct {
	snapshot func() config.Result
}

// NewConfigHandler serves the cached validator snapshot. A nil snapshot
// func uses config.Snapshot.
func NewConfigHandler(snapshot func() config.Result) *ConfigHandler {
	if snapshot == nil {
		snapshot = config.Snapshot
	}
	return &ConfigHandler{snapshot: snapshot}
}

// GET /api/config/status
func (h *ConfigHandler) Status(c *gin.Context) {
	res := h.snapshot()
	response.RespondOK(c, gin.H{
		"success":    true,
		"valid":      res.Valid,
		"categories": res.Categories,
		"features":   res.Features,
	})
}
