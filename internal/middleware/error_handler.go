package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

// ErrorHandler renders the last error attached with c.Error. Server-side
// failures are logged and reported without detail.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		statusCode := errors.HTTPStatusFromError(err.Err)

		message := err.Error()
		if statusCode >= http.StatusInternalServerError {
			log.Error("Request failed", "error", err.Err, "path", c.FullPath())
			message = "internal server error"
		}

		c.JSON(statusCode, gin.H{
			"error": message,
		})
	}
}
