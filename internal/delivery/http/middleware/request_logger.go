package middleware

import (
	"log/slog"
	"time"

	"go-resume-matcher/internal/delivery/http/response"
	"go-resume-matcher/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Log.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"request_id", response.RequestID(c),
		)
	}
}
