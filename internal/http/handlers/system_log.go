package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

type SystemLogHandler struct {
	log  *logger.Logger
	logs services.SystemLogService
}

func NewSystemLogHandler(log *logger.Logger, logs services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{log: log.With("handler", "SystemLogHandler"), logs: logs}
}

// POST /api/system-logs
func (h *SystemLogHandler) CreateLog(c *gin.Context) {
	var req services.CreateSystemLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, err := h.logs.Record(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"success": true, "log": row})
}

// GET /api/system-logs?level=&limit=
func (h *SystemLogHandler) ListLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	rows, err := h.logs.ListRecent(c.Request.Context(), c.Query("level"), limit)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "logs": rows})
}
