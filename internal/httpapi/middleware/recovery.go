// README: Recovery middleware, grounded on
// internal/http/middleware/recovery.go's recover-and-500 shape, ported to a
// Gin handler and to §7's "invariant violations panic; the episode is
// aborted (marked truncated) rather than crashing the process" — the HTTP
// boundary is where that abort becomes a 500 rather than a process exit.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal error",
			"truncated": true,
		})
	})
}
