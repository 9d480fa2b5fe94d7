package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// Recovery turns panics into the standard JSON 500.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("Panic while handling request", "path", c.Request.URL.Path, "panic", recovered)
		}
		response.AbortError(c, http.StatusInternalServerError, "Internal server error")
	})
}
