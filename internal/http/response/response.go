package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}

func RespondErrorDetails(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorBody{Error: message, Details: details})
}

func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
