package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"telemetry-service/internal/logging"
)

// RequestLoggingMiddleware writes one line per API call with the handler's
// status and latency. The path is captured before the handler runs since
// handlers may rewrite the request.
func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		logger.Infof("%s %s status=%d latency=%v", method, path, c.Writer.Status(), time.Since(start))
	}
}
