package middleware

import (
	"context"
	"regexp"

	"go-resume-matcher/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID propagates a well-formed incoming X-Request-ID or generates a UUID.
// The id is stored under "RequestID" on the gin context and domain.KeyRequestID on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !requestIDPattern.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set("RequestID", id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), domain.KeyRequestID, id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
