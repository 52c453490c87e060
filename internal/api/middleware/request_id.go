package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	// 网关或前端透传的 Request-ID 超长时弃用，防止日志注入
	requestIDMaxLen = 64
)

// RequestID 请求追踪 ID 中间件。
// 优先沿用调用方透传的 X-Request-ID，排班、换班、预约等跨服务
// 排查时可以串起同一笔请求；缺失或非法时生成 UUID 兜底，
// 注入 gin.Context 供访问日志使用并回写响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)

		c.Next()
	}
}
