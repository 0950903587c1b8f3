package transport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Viewfinder/modules/kit/logx"
	"Viewfinder/modules/kit/tracex"
)

// AccessLog 是请求级日志上下文。
type AccessLog struct {
	Status    int
	startTime time.Time
	action    string
}

type accessLogKey struct{}

// NewContextWithParent 创建带 AccessLog 和 trace_id 的新 context（保留父 context 的取消/超时信号）。
func NewContextWithParent(parent context.Context, action string) context.Context {
	ctx := parent
	if ctx == nil {
		ctx = context.Background()
	}
	if action == "" {
		action = "unknown"
	}
	if _, ok := tracex.TraceIDFrom(ctx); !ok {
		if traceID := tracex.NewTraceID(); traceID != "" {
			ctx = tracex.WithTraceID(ctx, traceID)
		}
	}

	al := &AccessLog{
		startTime: time.Now(),
		action:    action,
	}
	return context.WithValue(ctx, accessLogKey{}, al)
}

// FromContext 从 context 读取 AccessLog。
func FromContext(ctx context.Context) *AccessLog {
	if ctx == nil {
		return nil
	}
	al, _ := ctx.Value(accessLogKey{}).(*AccessLog)
	return al
}

// SetStatus 记录最终响应状态码。
func SetStatus(ctx context.Context, status int) {
	if al := FromContext(ctx); al != nil {
		al.Status = status
	}
}

// WriteAccessLog 输出访问日志。ctx 上若带 error_id，会随日志一起输出，便于与错误记录关联。
func WriteAccessLog(ctx context.Context, log logx.Logger) {
	al := FromContext(ctx)
	if al == nil || log == nil {
		return
	}

	fields := []zap.Field{
		zap.Duration("latency", time.Since(al.startTime)),
	}
	if al.Status < 400 {
		fields = append(fields, zap.String("result", "success"))
	} else {
		fields = append(fields, zap.String("result", "failure"))
	}
	logx.ReportAccessWithLoggerContext(ctx, log, al.action, al.Status, fields...)
}
