package middleware

import (
	"errors"
	"net/http"

	"go-resume-matcher/internal/delivery/http/response"
	"go-resume-matcher/pkg/apperror"
	"go-resume-matcher/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error. AppErrors keep their code and
// message; anything else becomes a generic 500. Causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil || appErr.Code >= http.StatusInternalServerError {
				logger.Log.ErrorContext(c.Request.Context(), "Request failed",
					"status", appErr.Code,
					"error", err,
					"path", c.FullPath(),
					"request_id", response.RequestID(c),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		logger.Log.ErrorContext(c.Request.Context(), "Internal Server Error",
			"error", err,
			"path", c.FullPath(),
			"request_id", response.RequestID(c),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
