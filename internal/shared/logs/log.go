package logs

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"Viewfinder/internal/shared/config"
	"Viewfinder/modules/kit/logx"
)

var logger *zap.Logger = zap.NewNop()

// Init 在进程启动时调用一次，之后只读。其余组件打日志前必须先 Init。
func Init(appName string, cfg config.LogConfig) error {
	return InitWithWriter(appName, cfg, os.Stderr)
}

// InitWithWriter 与 Init 相同，但控制台输出写到 w（测试用）。
func InitWithWriter(appName string, cfg config.LogConfig, w io.Writer) error {
	// 1) 级别：只有 debug 会打开 DEBUG；INFO 永远关闭；WARNING 及以上永远开启
	enabler := logx.NewLevelEnabler(strings.EqualFold(strings.TrimSpace(cfg.Level), "debug"))

	// 2) console 和 file 共用的编码器配置
	//    2026-01-28T10:00:00.000Z  ERROR  viewfinder  dispatch ...  dispatcher.go:88  {"error_code": ...}
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    logx.LevelEncoder, // DEBUG/WARNING/ERROR/CRITICAL
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// 3) 控制台：单行文本 + JSON 上下文，交给宿主的行式诊断流（容器里就是 stderr）
	consoleSyncer := zapcore.Lock(zapcore.AddSync(w))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), consoleSyncer, enabler)

	// 4) 可选文件输出（lumberjack 切割）：只有显式配置 file_dir 才开启
	if cfg.FileDir != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.FileDir,
			MaxSize:    max(1, cfg.MaxSize),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAge),
			Compress:   cfg.Compress,
		}
		core = zapcore.NewTee(
			core,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(fileWriter), enabler),
		)
	}

	// 5) 不开 zap.Development()：CRITICAL 复用 DPanic 档位，开发模式下会 panic
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(appName)

	// 6) 替换全局 logger：如果之前初始化过，先 Sync 刷盘
	_ = logger.Sync()
	logger = l
	return nil
}

// Logger 返回进程级 logx.Logger，供各组件注入。
func Logger() logx.Logger {
	return logx.NewZapLogger(logger)
}

// Sync 在进程退出前调用。
func Sync() {
	_ = logger.Sync()
}

// 以下为便捷封装，供 main 等没有注入 logger 的地方使用。

func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

// Info 保留调用点兼容，默认不落盘。
func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

// Critical 输出 CRITICAL 级别日志，不退出进程。
func Critical(msg string, fields ...zap.Field) {
	logger.DPanic(msg, fields...)
}

// Fatal 输出 CRITICAL 级别日志，然后退出程序（os.Exit(1)）。
func Fatal(msg string, fields ...zap.Field) {
	logger.Fatal(msg, fields...)
}
