package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured origins. "*" allows any origin, without credentials.
// Requests without an Origin header are same-origin and pass through untouched.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		isAllowed := origin == "" || wildcard || allowed[origin]

		if origin != "" && isAllowed {
			if wildcard && !allowed[origin] {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Analysis-ID, X-Cache, Content-Disposition, Retry-After")
			c.Header("Access-Control-Max-Age", "86400")
		}
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			if isAllowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}

		c.Next()
	}
}
