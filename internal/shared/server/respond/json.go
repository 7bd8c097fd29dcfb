package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes payload as a 200 response. Payloads carry their own success flag.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// JSON writes payload with an explicit status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
