package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blog-api/internal/telemetry"
)

// CacheKey is the gin context key a handler sets to "hit" or "miss".
const CacheKey = "cache"

// RequestLogger logs every request once it has been served and records its metrics.
func RequestLogger(log *zap.Logger, metrics *telemetry.Metrics) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, route, status, elapsed)

		level := zapcore.InfoLevel
		if status >= 500 {
			level = zapcore.ErrorLevel
		}
		ce := log.Check(level, "request")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if outcome := c.GetString(CacheKey); outcome != "" {
			fields = append(fields, zap.String("cache", outcome))
		}
		if editor := c.GetString(EditorKey); editor != "" {
			fields = append(fields, zap.String("editor", editor))
		}
		ce.Write(fields...)
	}
}
