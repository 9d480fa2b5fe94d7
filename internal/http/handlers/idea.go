package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

type IdeaHandler struct {
	log        *logger.Logger
	generation services.IdeaGenerationService
	ideas      services.UserIdeaService
}

func NewIdeaHandler(log *logger.Logger, generation services.IdeaGenerationService, ideas services.UserIdeaService) *IdeaHandler {
	return &IdeaHandler{
		log:        log.With("handler", "IdeaHandler"),
		generation: generation,
		ideas:      ideas,
	}
}

// POST /api/generate-idea
// body: {type, data?, prompt?, multiple?, count?}
func (h *IdeaHandler) GenerateIdea(c *gin.Context) {
	var req services.GenerateIdeasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.generation.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	if !req.Multiple {
		if len(res.Ideas) == 0 {
			response.RespondError(c, http.StatusInternalServerError, "Failed to generate idea")
			return
		}
		response.RespondOK(c, res.Ideas[0])
		return
	}
	response.RespondOK(c, res)
}

// POST /api/save-idea
// body: {idea}
func (h *IdeaHandler) SaveIdea(c *gin.Context) {
	var req struct {
		Idea *types.Idea `json:"idea"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, err := h.ideas.Save(c.Request.Context(), req.Idea)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"success": true, "idea": row})
}

// GET /api/ideas?status=&limit=
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.ideas.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "ideas": rows, "total": len(rows)})
}

// GET /api/ideas/:id
func (h *IdeaHandler) GetIdea(c *gin.Context) {
	row, err := h.ideas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "idea": row})
}

// PATCH /api/ideas/:id
// body: {status?, notes?}
func (h *IdeaHandler) UpdateIdea(c *gin.Context) {
	var req services.UpdateUserIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, err := h.ideas.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "idea": row})
}

// DELETE /api/ideas/:id
func (h *IdeaHandler) DeleteIdea(c *gin.Context) {
	if err := h.ideas.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
