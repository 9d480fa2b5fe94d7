package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/platform/ctxutil"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

// SessionCookie is the cookie Clerk sets for same-site requests.
const SessionCookie = "__session"

type AuthMiddleware struct {
	log      *logger.Logger
	verifier services.SessionVerifier
}

func NewAuthMiddleware(log *logger.Logger, verifier services.SessionVerifier) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, verifier: verifier}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" || am.verifier == nil {
			response.AbortError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := am.verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Session token rejected", "path", c.FullPath(), "error", err)
			response.AbortError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID:    claims.UserID,
			SessionID: claims.SessionID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractToken prefers the Authorization header and falls back to the
// Clerk session cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
