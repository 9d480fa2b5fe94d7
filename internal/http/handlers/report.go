package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

type ReportHandler struct {
	log     *logger.Logger
	reports services.ReportService
	shares  services.ShareService
}

func NewReportHandler(log *logger.Logger, reports services.ReportService, shares services.ShareService) *ReportHandler {
	return &ReportHandler{
		log:     log.With("handler", "ReportHandler"),
		reports: reports,
		shares:  shares,
	}
}

// POST /api/generate-report
// body: {idea, ideaId?}
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var req services.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Idea data is required")
		return
	}
	res, err := h.reports.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/generate-report?idea_id=
func (h *ReportHandler) GenerateReportInfo(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"message": "Use POST /api/generate-report with {idea, ideaId} to generate a report",
		"idea_id": c.Query("idea_id"),
	})
}

// GET /api/reports?limit=
func (h *ReportHandler) ListReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.reports.ListStored(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "reports": rows})
}

// GET /api/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	row, err := h.reports.GetStored(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "report": row})
}

// POST /api/share-report
// body: {report_id} or {idea_id}
func (h *ReportHandler) ShareReport(c *gin.Context) {
	var req services.ShareReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.shares.Share(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/share-report/:token (public)
func (h *ReportHandler) GetSharedReport(c *gin.Context) {
	view, err := h.shares.GetShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}
