package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const requestLoggerKey = "requestLogger"

// 探活与指标抓取频率高，只在 debug 级别记录。
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// SlogLoggerMiddleware 为每个请求派生带 correlation_id 与简历/分区标识的 logger，结束时记录一条汇总。
func SlogLoggerMiddleware(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		attrs := []any{
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("route", route),
		}
		for param, key := range map[string]string{"id": "resume_id", "sectionId": "section_id"} {
			if v := c.Param(param); v != "" {
				attrs = append(attrs, slog.String(key, v))
			}
		}
		reqLog := base.With(attrs...)
		c.Set(requestLoggerKey, reqLog)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, slog.String("errors", c.Errors.String()))
		}
		reqLog.Log(c.Request.Context(), levelFor(route, status), "request completed", fields...)
	}
}

func levelFor(route string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case quietRoutes[route]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LoggerFromContext 取出请求级 logger，没有时退回默认 logger。
func LoggerFromContext(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
