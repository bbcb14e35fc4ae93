package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penpal-app/penpal-api/internal/logger"
)

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		event := logger.Logger().Info()
		if c.Writer.Status() >= 500 {
			event = logger.Logger().Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
