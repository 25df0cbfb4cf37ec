package handler

import (
	"context"
	"time"

	"ats-score-go/internal/constants"
	"ats-score-go/internal/logger"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID 为每个请求分配 request id, 客户端提供时沿用
// id 写入响应头, RequestContext 和日志上下文
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		requestID := string(c.GetHeader(constants.RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Response.Header.Set(constants.RequestIDHeader, requestID)
		c.Next(logger.WithRequestID(ctx, requestID))
	}
}

// AccessLog 记录请求方法, 路径, 状态码和耗时
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		hlog.CtxInfof(ctx, "%s %s status=%d request_id=%s elapsed=%s",
			c.Method(), c.Path(), c.Response.StatusCode(), RequestIDFrom(c), time.Since(start))
	}
}

// RequestIDFrom 读取 RequestID 中间件写入的 request id
func RequestIDFrom(c *app.RequestContext) string {
	return c.GetString(requestIDKey)
}
