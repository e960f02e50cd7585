// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"dmx-service/internal/utils"
)

// LoggingMiddleware logs every request once the handler chain completes
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logger.LogAPIRequest(
			c.Request.Method,
			path,
			utils.GetRequestID(c),
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(startTime),
		)
	}
}
