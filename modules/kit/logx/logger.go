package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是跨服务可复用的最小日志接口。
//
// 约束：
// - 保持 API 极简，避免“自研日志框架”过度设计
// - 只承载业务需要的能力：结构化字段 + ctx 透传（trace_id / error_id）
// - Info 保留调用点兼容，进程级 core 永不启用 INFO（见 LevelEnabler）
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Critical(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}
