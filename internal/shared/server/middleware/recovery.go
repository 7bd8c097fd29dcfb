package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"smartmail-backend/internal/shared/metrics"
	"smartmail-backend/internal/shared/server/respond"
	"smartmail-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error body. A panic during
// generation counts as a failed generation.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			})
			if c.FullPath() == "/api/generate" {
				metrics.IncGenerationFailed()
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "An unexpected error occurred", nil)
		}()
		c.Next()
	}
}
