package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesummary/internal/domain/dto"
	"github.com/guttosm/tradesummary/internal/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 response.
//
// The panic is logged with its stack and the request it happened on
// (request_id, method, route, path and client IP), so the log line can be
// joined with the RequestLogger entry. The response body never carries the
// panic value. When the handler already started writing, the chain is only
// aborted.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RecoveryMiddleware())
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err := fmt.Errorf("panic: %v", r)
			rid, _ := c.Get(RequestIDKey)

			logger.L().Error().
				Str("request_id", toString(rid)).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Str("panic", fmt.Sprintf("%v", r)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			_ = c.Error(err)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", nil))
		}()

		c.Next()
	}
}
