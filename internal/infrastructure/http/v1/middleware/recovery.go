// Package middleware wires cross-cutting request concerns for the v1 API:
// tracing, auth, permission gating, request logging and panic recovery.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"vibooks/internal/core/apperror"
	"vibooks/pkg/logger"
)

// Recovery turns a handler panic into a logged 500. The panic value and
// stack stay in the log; the client only sees the opaque internal error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error(c.Request.Context(), "handler panicked",
				"panic", r,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			_ = c.Error(
				apperror.NewInternal(fmt.Errorf("panic: %v", r)).
					WithDetail("request_id", c.GetString("request_id")),
			)
			c.Abort()
		}()
		c.Next()
	}
}
