package logx

import (
	"go.uber.org/zap/zapcore"
)

// CriticalLevel 复用 zap 的 DPanic 档位，输出名为 CRITICAL。
// 进程 logger 不开启 zap.Development()，DPanic 只写日志不 panic。
const CriticalLevel = zapcore.DPanicLevel

// LevelName 返回对外日志级别名。
func LevelName(l zapcore.Level) string {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	case CriticalLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return "CRITICAL"
	default:
		return l.CapitalString()
	}
}

// LevelEncoder 是 zapcore.LevelEncoder 实现，配合 LevelName 使用。
func LevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}

// LevelEnabler 决定哪些级别落盘：
// - DEBUG：仅当配置时开启
// - INFO：永远关闭（降噪）
// - WARNING 及以上：永远开启
type LevelEnabler struct {
	debug bool
}

func NewLevelEnabler(debug bool) LevelEnabler {
	return LevelEnabler{debug: debug}
}

func (e LevelEnabler) Enabled(l zapcore.Level) bool {
	switch {
	case l == zapcore.DebugLevel:
		return e.debug
	case l == zapcore.InfoLevel:
		return false
	default:
		return l >= zapcore.WarnLevel
	}
}

func (e LevelEnabler) DebugEnabled() bool {
	return e.debug
}
