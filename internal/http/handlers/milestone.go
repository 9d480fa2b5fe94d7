package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

type MilestoneHandler struct {
	log        *logger.Logger
	milestones services.MilestoneService
}

func NewMilestoneHandler(log *logger.Logger, milestones services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{log: log.With("handler", "MilestoneHandler"), milestones: milestones}
}

// GET /api/milestones?idea_id=
func (h *MilestoneHandler) ListMilestones(c *gin.Context) {
	rows, err := h.milestones.List(c.Request.Context(), c.Query("idea_id"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "milestones": rows})
}

// POST /api/milestones
func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	var req services.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, err := h.milestones.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"success": true, "milestone": row})
}

// PATCH /api/milestones/:id
func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	var req services.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, err := h.milestones.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "milestone": row})
}

// DELETE /api/milestones/:id
func (h *MilestoneHandler) DeleteMilestone(c *gin.Context) {
	if err := h.milestones.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
