package logx

import (
	"context"

	"Viewfinder/modules/kit/tracex"

	"go.uber.org/zap"
)

// ZapLogger 是 zap 的适配器，实现 logx.Logger，便于各服务复用。
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		return &ZapLogger{logger: zap.NewNop()}
	}
	return &ZapLogger{logger: l}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if z == nil {
		return NewZapLogger(nil)
	}
	if ctx == nil {
		return z
	}
	l := z.logger
	if tid, ok := tracex.TraceIDFrom(ctx); ok {
		l = l.With(zap.String("trace_id", tid))
	}
	if eid, ok := tracex.ErrorIDFrom(ctx); ok {
		l = l.With(zap.String("error_id", eid))
	}
	return &ZapLogger{logger: l}
}

func (z *ZapLogger) Debug(msg string, fields ...zap.Field) {
	z.logger.Debug(msg, fields...)
}

func (z *ZapLogger) Info(msg string, fields ...zap.Field) {
	z.logger.Info(msg, fields...)
}

func (z *ZapLogger) Warn(msg string, fields ...zap.Field) {
	z.logger.Warn(msg, fields...)
}

func (z *ZapLogger) Error(msg string, fields ...zap.Field) {
	z.logger.Error(msg, fields...)
}

func (z *ZapLogger) Critical(msg string, fields ...zap.Field) {
	z.logger.DPanic(msg, fields...)
}

// Zap 暴露底层 logger，仅供需要 *zap.Logger 的第三方组件（如 gin 恢复日志）使用。
func (z *ZapLogger) Zap() *zap.Logger {
	return z.logger
}
