package response

import (
	"github.com/gin-gonic/gin"
)

// ApiEnvelope is the uniform JSON response shape. The decision endpoints that
// are reached from emailed links respond with plain HTML instead and bypass
// it.
type ApiEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, ApiEnvelope{
		Success: true,
		Data:    data,
	})
}

func SuccessMessage(c *gin.Context, status int, message string) {
	c.JSON(status, ApiEnvelope{
		Success: true,
		Message: message,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Success: false,
		Message: message,
		Error: map[string]any{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}
