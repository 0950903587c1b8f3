package logx

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SysLog 是技术错误日志的强类型输入，避免参数顺序误传。
type SysLog struct {
	Action string
	Err    error
}

func NewSysLog(action string, err error) SysLog {
	return SysLog{
		Action: action,
		Err:    err,
	}
}

// ReportAccessWithLoggerContext 记录访问日志：
// - status < 400: INFO（进程级 core 不输出 INFO）
// - status >= 400: DEBUG，失败本身已由错误通道记过一条 ERROR，默认只保留那一条
func ReportAccessWithLoggerContext(ctx context.Context, l Logger, action string, status int, fields ...zap.Field) {
	if l == nil {
		return
	}
	base := []zap.Field{
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("status", status),
	}
	base = append(base, fields...)
	withCtx := l.WithContext(ctx)
	if status < 400 {
		withCtx.Info("access", base...)
		return
	}
	withCtx.Debug("access", base...)
}

// ReportSysErrorWithLoggerContext 记录技术错误日志：ERROR，一条记录带全部技术细节与有序上下文。
// 每次失败只调用一次；用户侧永远看不到这些字段。
func ReportSysErrorWithLoggerContext(ctx context.Context, l Logger, sys SysLog, fields ...zap.Field) {
	if sys.Err == nil || l == nil {
		return
	}
	action := sys.Action
	if action == "" {
		action = "sys_error"
	}
	meta := BuildErrorLog(sys.Err)
	l.WithContext(ctx).Error(sysMessage(action, meta), sysFields(meta, fields)...)
}

// ReportCriticalWithLoggerContext 记录致命错误（恢复的 panic 等）：CRITICAL。
func ReportCriticalWithLoggerContext(ctx context.Context, l Logger, action string, fields ...zap.Field) {
	if l == nil {
		return
	}
	if action == "" {
		action = "fatal_error"
	}
	base := []zap.Field{
		zap.String("err_type", "fatal"),
		zap.String("action", action),
	}
	base = append(base, fields...)
	l.WithContext(ctx).Critical(action, base...)
}

func sysMessage(action string, meta ErrorLog) string {
	if meta.Reason != "" {
		return fmt.Sprintf("%s, reason:%s, error:%s", action, meta.Reason, meta.Error)
	}
	return fmt.Sprintf("%s, error:%s", action, meta.Error)
}

func sysFields(meta ErrorLog, extra []zap.Field) []zap.Field {
	base := []zap.Field{
		zap.String("err_type", "sys"),
	}
	if meta.Code != "" {
		base = append(base, zap.String("error_code", meta.Code))
	}
	if meta.Kind != "" {
		base = append(base, zap.String("error_kind", meta.Kind))
	}
	if meta.Msg != "" {
		base = append(base, zap.String("technical_message", meta.Msg))
	}
	if meta.UserMessage != "" {
		base = append(base, zap.String("user_message", meta.UserMessage))
	}
	if meta.Context != nil {
		base = append(base, zap.Object("error_context", meta.Context))
	} else if len(meta.Data) != 0 {
		base = append(base, zap.Any("error_context", meta.Data))
	}
	if len(meta.CauseChain) != 0 {
		base = append(base, zap.Strings("cause_chain", meta.CauseChain))
	}
	if meta.Origin != "" {
		base = append(base, zap.String("origin_caller", meta.Origin))
	}
	if meta.Stack != "" {
		base = append(base, zap.String("stack_origin", meta.Stack))
	}
	return append(base, extra...)
}
