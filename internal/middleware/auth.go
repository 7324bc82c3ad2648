package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus_exchange/internal/service"
	"campus_exchange/pkg/logger"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
)

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// BearerToken extracts the credential from an "Authorization: Bearer"
// header; the scheme is matched case-insensitively. With allowQuery set, a
// "token" query parameter is accepted when the header is absent.
func BearerToken(r *http.Request, allowQuery bool) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if header == "" && allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token := BearerToken(c.Request, false)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		user, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			m.log.Debug("Rejected bearer token", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUserEmail, user.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
