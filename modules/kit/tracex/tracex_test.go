package tracex

import (
	"context"
	"testing"
)

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "t-1")
	if got, ok := TraceIDFrom(ctx); !ok || got != "t-1" {
		t.Fatalf("期望 TraceIDFrom round-trip 成功，got=%q ok=%v", got, ok)
	}
}

func TestErrorID_空值视为不存在(t *testing.T) {
	ctx := WithErrorID(context.Background(), "")
	if _, ok := ErrorIDFrom(ctx); ok {
		t.Fatalf("期望空 error_id 视为不存在")
	}
	ctx = WithErrorID(ctx, "ERR-20251217-3F9A2B10")
	if got, ok := ErrorIDFrom(ctx); !ok || got != "ERR-20251217-3F9A2B10" {
		t.Fatalf("期望 ErrorIDFrom round-trip 成功，got=%q", got)
	}
}

func TestNewTraceID_长度(t *testing.T) {
	if got := NewTraceID(); len(got) != 32 {
		t.Fatalf("期望 32 位 hex, got=%q", got)
	}
}
