package v1

import "github.com/gin-gonic/gin"

// envelope is the uniform response shape of the API. Data is null on
// failure and on responses carrying a message only.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}
