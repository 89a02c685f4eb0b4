package ginmw

import (
	"github.com/gin-gonic/gin"

	"apierrmw/pkg/apierr"
)

// NotFound forwards a 404 payload when the request matched no route.
// It works both as an engine.NoRoute handler and as a global middleware.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() != "" {
			c.Next()
			return
		}
		Forward(c, apierr.NotFound())
	}
}

// MethodNotAllowed forwards a 405 payload. Use it with engine.NoMethod and
// engine.HandleMethodNotAllowed.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		Forward(c, apierr.MethodNotAllowed())
	}
}
