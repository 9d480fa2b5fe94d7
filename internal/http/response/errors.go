package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const internalErrorMessage = "Internal server error"

// RespondServiceError writes err using the status it carries. Errors
// without a status become a generic 500; the detail only goes to the log.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		if ae.Status >= 500 && log != nil {
			log.Error("Request failed", "path", c.FullPath(), "status", ae.Status, "error", err)
		}
		RespondError(c, ae.Status, ae.Error())
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		RespondError(c, http.StatusRequestTimeout, "Request timed out")
		return
	}
	if log != nil {
		log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	RespondError(c, http.StatusInternalServerError, internalErrorMessage)
}
