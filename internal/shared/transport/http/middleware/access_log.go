package middleware

import (
	"github.com/gin-gonic/gin"

	"Viewfinder/internal/shared/transport"
	"Viewfinder/modules/kit/logx"
)

// AccessLog 统一写访问日志。必须注册在错误分发中间件之前，才能看到最终状态码和 error_id。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		action := c.Request.Method + " " + route

		ctx := transport.NewContextWithParent(c.Request.Context(), action)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// 下游可能替换了 c.Request（例如追加 error_id），以最新的 context 为准。
		ctx = c.Request.Context()
		transport.SetStatus(ctx, c.Writer.Status())
		transport.WriteAccessLog(ctx, log)
	}
}
