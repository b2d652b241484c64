package middleware

import (
	"net/http"
	"runtime/debug"

	"go-resume-matcher/internal/delivery/http/response"
	"go-resume-matcher/pkg/logger"
	"go-resume-matcher/pkg/security"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 with the message chosen by messageFor.
// The panic value and stack are logged, never sent.
func Recovery(secLog *security.SecurityLogger, messageFor func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			reqID := response.RequestID(c)
			logger.Log.ErrorContext(c.Request.Context(), "Panic recovered",
				"panic", rec,
				"path", c.Request.URL.Path,
				"request_id", reqID,
				"stack", string(debug.Stack()),
			)
			if secLog != nil {
				secLog.LogPanicRecovered(c.Request.Context(), c.ClientIP(), reqID, c.FullPath(), rec)
			}

			msg := "An unexpected error occurred. Please try again later."
			if messageFor != nil {
				if m := messageFor(c); m != "" {
					msg = m
				}
			}
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Abort(c, http.StatusInternalServerError, msg)
		}()

		c.Next()
	}
}
