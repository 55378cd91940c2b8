package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spoton-app/spoton/ctxutil"
	"github.com/spoton-app/spoton/logging/logger"
)

// traceMiddleware reuses the caller's X-Request-Id or generates one, and
// echoes it on the response.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := c.GetHeader(ctxutil.TraceIDHeader); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		}
		_, traceID := ctxutil.EnsureTraceID(ctx)

		ctxutil.BindTraceID(c, traceID)
		c.Header(ctxutil.TraceIDHeader, traceID)
		c.Next()
	}
}

func loggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		entry := l.WithContextFields(ctxutil.FromGinContext(c), logrus.Fields{
			"method":    method,
			"path":      path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("HTTP request")
	}
}
