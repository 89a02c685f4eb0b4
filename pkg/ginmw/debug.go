package ginmw

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// DebugLogger logs every request error with basic request metadata and
// leaves the error in place for the middleware registered before it.
func DebugLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		attrs := []slog.Attr{
			slog.String("ip", c.ClientIP()),
			slog.String("method", c.Request.Method),
			slog.String("url", c.Request.URL.String()),
			slog.Any("error", RawValue(last.Err)),
		}
		if id := RequestIDFrom(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		log.LogAttrs(c.Request.Context(), slog.LevelWarn, "request error", attrs...)
	}
}
