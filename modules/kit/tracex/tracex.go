package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type traceIDKey struct{}
type errorIDKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(traceIDKey{})
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// WithErrorID 记录本次请求的错误编号，日志据此与用户页面上的编号对齐。
func WithErrorID(ctx context.Context, errorID string) context.Context {
	return context.WithValue(ctx, errorIDKey{}, errorID)
}

func ErrorIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(errorIDKey{})
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// NewTraceID 生成 16 字节随机 trace_id（hex）。
func NewTraceID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
