package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := FileNotFound("/a").WithField("k", "v").WithCause(errors.New("cause1"))
	e2 := ReadFailed("/b", "denied")
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true（只按 code 判断语义），e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, ErrValidation) {
		t.Fatalf("期望不同 kind 不相等，e1=%v", e1)
	}
	wrapped := fmt.Errorf("wrap: %w", e1)
	if !errors.Is(wrapped, ErrFileSystem) {
		t.Fatalf("期望 errors.Is(wrapped, ErrFileSystem)==true, wrapped=%v", wrapped)
	}
}

func TestNew_用户文案为空时回退默认文案(t *testing.T) {
	err := New(KindConfig, "db host missing", "")
	if got := err.UserMessage(); got != DefaultUserMessage {
		t.Fatalf("期望回退默认文案，got=%q", got)
	}
	var nilErr *Error
	if got := nilErr.UserMessage(); got != DefaultUserMessage {
		t.Fatalf("期望 nil 也返回默认文案，got=%q", got)
	}
}

func TestError_WithField_不污染原对象(t *testing.T) {
	base := MissingKey("content.lob_dir")
	next := base.WithField("source", "conf.yml")

	if _, ok := base.Fields().Get("source"); ok {
		t.Fatalf("期望 base 不被修改，base=%v", base.Fields())
	}
	if got := next.Fields().GetString("source"); got != "conf.yml" {
		t.Fatalf("期望 next.source == conf.yml, got=%q", got)
	}

	fs := next.Fields()
	fs[0].Value = "mutated"
	if got := next.Fields().GetString("config_key"); got != "content.lob_dir" {
		t.Fatalf("期望 Fields() 返回拷贝，got=%q", got)
	}
}

func TestError_Fields_保持写入顺序(t *testing.T) {
	err := DecodeFailed("/etc/app/controls.json", 12, "invalid character '}'")
	want := []string{"file_path", "json_error_code", "json_error_message", "error_type"}
	got := err.Fields().Keys()
	if len(got) != len(want) {
		t.Fatalf("keys 数量不符，got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys 顺序不符，got=%v want=%v", got, want)
		}
	}
	if err.Reason() != "decode_failed" {
		t.Fatalf("期望 Reason() == decode_failed, got=%q", err.Reason())
	}
}

func TestWrap_已有AppError直接复用(t *testing.T) {
	orig := InvalidLOB("bogus", []string{"finance"})
	wrapped := fmt.Errorf("handler: %w", orig)

	got := Wrap(wrapped)
	if got.Kind() != KindValidation {
		t.Fatalf("期望保留原 kind，got=%v", got.Kind())
	}
	if got == orig {
		t.Fatalf("期望返回拷贝而不是同一指针")
	}
	if got.Fields().GetString("provided_value") != "bogus" {
		t.Fatalf("期望保留上下文，got=%v", got.Fields())
	}
}

func TestWrap_未归类错误捕获一次栈(t *testing.T) {
	cause := errors.New("nil map write")
	got := Wrap(cause)
	if got.Kind() != KindGeneric || got.Code() != CodeGeneric {
		t.Fatalf("期望未归类错误，got=%v", got)
	}
	if len(got.Stack()) == 0 {
		t.Fatalf("期望未归类错误捕获栈")
	}
	if !errors.Is(got, cause) {
		t.Fatalf("期望 cause 链不丢，got=%v", got)
	}
	if got.Msg() != "nil map write" {
		t.Fatalf("期望技术文案取自原错误，got=%q", got.Msg())
	}

	again := Unclassified("outer").WithCause(got)
	if again.Stack() != nil {
		t.Fatalf("期望下层已有栈时不重复捕获")
	}
}

func TestWithCause_分类错误不捕获栈(t *testing.T) {
	err := FileNotFound("/x").WithCause(errors.New("stat failed"))
	if err.Stack() != nil {
		t.Fatalf("期望分类错误不捕获栈，got=%v", err.Stack())
	}
}

func TestWrap_nil返回nil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatalf("期望 Wrap(nil) == nil")
	}
}

func TestKind_Code_覆盖全部分类(t *testing.T) {
	want := map[Kind]Code{
		KindGeneric:    "VIEWFINDER_ERROR",
		KindFileSystem: "FILE_SYSTEM_ERROR",
		KindValidation: "VALIDATION_ERROR",
		KindDocument:   "JSON_ERROR",
		KindConfig:     "CONFIG_ERROR",
		KindProfile:    "PROFILE_ERROR",
	}
	if len(Kinds) != len(want) {
		t.Fatalf("Kinds 与码表数量不一致")
	}
	for _, k := range Kinds {
		if k.Code() != want[k] {
			t.Fatalf("kind=%v got=%s want=%s", k, k.Code(), want[k])
		}
	}
}
