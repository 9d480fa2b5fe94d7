package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

type UserHandler struct {
	log      *logger.Logger
	settings services.UserSettingsService
}

func NewUserHandler(log *logger.Logger, settings services.UserSettingsService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), settings: settings}
}

// GET /api/preferences
func (uh *UserHandler) GetPreferences(c *gin.Context) {
	prefs, err := uh.settings.GetPreferences(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "preferences": prefs})
}

// POST /api/preferences
// body: the full preferences object; omitted fields reset to defaults
func (uh *UserHandler) SavePreferences(c *gin.Context) {
	var req services.PreferencesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	prefs, err := uh.settings.SavePreferences(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "preferences": prefs})
}

// GET /api/profile
func (uh *UserHandler) GetProfile(c *gin.Context) {
	profile, err := uh.settings.GetProfile(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "profile": profile})
}

// PUT /api/profile
// body: {display_name, bio, company, website}; credits are ignored
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	profile, err := uh.settings.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "profile": profile})
}
