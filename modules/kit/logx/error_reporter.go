package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap/zapcore"
)

type codeTextProvider interface {
	CodeText() string
}

type msgProvider interface {
	Msg() string
}

type userMessageProvider interface {
	UserMessage() string
}

type kindTextProvider interface {
	KindText() string
}

type dataProvider interface {
	Data() map[string]any
}

type stackProvider interface {
	Stack() []uintptr
}

type reasonProvider interface {
	Reason() string
}

// objectProvider 由有序上下文实现（errx.Error.Fields 返回值）。
type objectProvider interface {
	LogObject() zapcore.ObjectMarshaler
}

type ErrorLog struct {
	Error       string
	Code        string
	Kind        string
	Msg         string
	UserMessage string
	Reason      string
	Data        map[string]any
	Context     zapcore.ObjectMarshaler
	CauseChain  []string
	Origin      string
	Stack       string
}

// BuildErrorLog 把“错误码/语义/上下文/cause链/发生处栈”提取成便于阅读的结构，用于接口层统一打印。
// 结果只进日志，禁止投影到响应。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}

	out := ErrorLog{
		Error: err.Error(),
	}

	var cp codeTextProvider
	if errors.As(err, &cp) {
		out.Code = cp.CodeText()
	}
	var kp kindTextProvider
	if errors.As(err, &kp) {
		out.Kind = kp.KindText()
	}
	var mp msgProvider
	if errors.As(err, &mp) {
		out.Msg = mp.Msg()
	}
	var up userMessageProvider
	if errors.As(err, &up) {
		out.UserMessage = up.UserMessage()
	}
	var dp dataProvider
	if errors.As(err, &dp) {
		out.Data = dp.Data()
	}
	var op objectProvider
	if errors.As(err, &op) {
		out.Context = op.LogObject()
	}
	var rp reasonProvider
	if errors.As(err, &rp) {
		out.Reason = rp.Reason()
	}
	var sp stackProvider
	if errors.As(err, &sp) {
		out.Origin, out.Stack = formatStack(sp.Stack(), 32)
	}
	out.CauseChain = buildCauseChain(err, 20)
	return out
}

func buildCauseChain(err error, maxDepth int) []string {
	if err == nil || maxDepth <= 0 {
		return nil
	}
	out := make([]string, 0, 4)
	cur := errors.Unwrap(err)
	for i := 0; i < maxDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (originCaller string, stack string) {
	if len(pcs) == 0 || maxFrames <= 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	var b strings.Builder
	for i := 0; i < maxFrames; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" && f.Line == 0 {
			break
		}
		if originCaller == "" {
			originCaller = fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line)
		}
		b.WriteString(f.Function)
		b.WriteString(" ")
		b.WriteString(f.File)
		b.WriteString(":")
		b.WriteString(fmt.Sprintf("%d", f.Line))
		if !more {
			break
		}
		b.WriteString("\n")
	}
	return originCaller, b.String()
}
