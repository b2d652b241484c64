package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON envelope
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// RequestID returns the id set by the request ID middleware
func RequestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string)
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: RequestID(c),
	})
}

// Error sends an error response. The message is repeated in "error" so clients
// that only read that field still get it.
func Error(c *gin.Context, code int, message string, details interface{}) {
	if details == nil {
		details = message
	}
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     details,
		RequestID: RequestID(c),
	})
}

// Abort sends an error response and stops the handler chain
func Abort(c *gin.Context, code int, message string) {
	Error(c, code, message, nil)
	c.Abort()
}
