package middleware

import (
	"context"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	correlationIDKey    = "correlationID"
	correlationIDHeader = "X-Correlation-ID"
	requestIDHeader     = "X-Request-ID"
	maxCorrelationIDLen = 128
)

type correlationCtxKey struct{}

// CorrelationIDMiddleware 确保每个请求都带有 Correlation ID，并写入 request context 供打印任务透传。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationIDHeader)
		if id == "" {
			id = c.GetHeader(requestIDHeader)
		}
		// 过长或含控制字符的外部 ID 直接丢弃，重新生成
		if id == "" || len(id) > maxCorrelationIDLen || strings.ContainsFunc(id, unicode.IsControl) {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(correlationIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), correlationCtxKey{}, id))

		c.Next()
	}
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	if value, ok := c.Get(correlationIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return CorrelationIDFrom(c.Request.Context())
}

// CorrelationIDFrom 从 context.Context 中取出 Correlation ID。
func CorrelationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationCtxKey{}).(string)
	return id
}
