package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the wire shape every endpoint answers with, regardless of
// HTTP status: {"success": true, "data": ...} or {"success": false, "error": "..."}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success: true,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Error:   message,
	})
}
