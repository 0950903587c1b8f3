package errx

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap/zapcore"
)

// Error 是全站统一的失败值（tagged variant，靠 kind 区分分类）：
// - technical：只进日志，可以含路径/解析器原文
// - user：可直接展示给用户，独立撰写，永不从 technical 截取
// - fields：有序上下文，只用于日志和分发层白名单投影
// - cause：原始错误链（仅用于溯源）
// - stack：只在“未归类错误”第一次挂 cause 时捕获一次
//
// 所有 With* 方法都返回新对象，跨层传递等价于值拷贝。
type Error struct {
	kind      Kind
	technical string
	user      string
	fields    Fields
	cause     error
	stack     []uintptr
}

// New 创建错误。user 为空时回退到 DefaultUserMessage。
func New(kind Kind, technical, user string, fields ...Field) *Error {
	if user == "" {
		user = DefaultUserMessage
	}
	e := &Error{
		kind:      kind,
		technical: technical,
		user:      user,
	}
	for _, f := range fields {
		e.fields = e.fields.set(f.Key, f.Value)
	}
	return e
}

// Wrap 把任意错误归一为 *Error：链上已有 *Error 则返回其拷贝，否则包成未归类错误。
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.clone()
	}
	return Unclassified(err.Error()).WithCause(err)
}

// As 是 errors.As 的快捷写法。
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause == nil || e.cause.Error() == e.technical {
		return fmt.Sprintf("%s: %s", e.kind.Code(), e.technical)
	}
	return fmt.Sprintf("%s: %s: %v", e.kind.Code(), e.technical, e.cause)
}

// Unwrap 让 errors.Is / errors.As 可以沿着 cause 链溯源。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is 只按错误码判断语义，忽略文案/上下文/cause。
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.kind.Code() == t.kind.Code()
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindGeneric
	}
	return e.kind
}

func (e *Error) Code() Code {
	if e == nil {
		return ""
	}
	return e.kind.Code()
}

func (e *Error) CodeText() string {
	return string(e.Code())
}

// Msg 返回技术文案（日志用）。
func (e *Error) Msg() string {
	if e == nil {
		return ""
	}
	return e.technical
}

// UserMessage 返回可展示给用户的文案，保证非空。
func (e *Error) UserMessage() string {
	if e == nil || e.user == "" {
		return DefaultUserMessage
	}
	return e.user
}

// Fields 返回有序上下文的拷贝。
func (e *Error) Fields() Fields {
	if e == nil {
		return nil
	}
	return e.fields.clone()
}

// Data 返回上下文的 map 拷贝，供 logx.BuildErrorLog 使用。
func (e *Error) Data() map[string]any {
	if e == nil {
		return nil
	}
	return e.fields.Map()
}

// Reason 返回约定的原因码（存储在 fields.error_type）。
func (e *Error) Reason() string {
	if e == nil {
		return ""
	}
	return e.fields.GetString("error_type")
}

// Stack 返回首次挂 cause 时捕获的调用栈。
func (e *Error) Stack() []uintptr {
	if e == nil || len(e.stack) == 0 {
		return nil
	}
	out := make([]uintptr, len(e.stack))
	copy(out, e.stack)
	return out
}

func (e *Error) WithField(key string, value any) *Error {
	next := e.clone()
	next.fields = next.fields.set(key, value)
	return next
}

func (e *Error) WithCause(cause error) *Error {
	next := e.clone()
	next.cause = cause
	// 只有未归类错误需要栈：分类错误的 fields 已足够定位。下层已有栈则不重复捕获。
	if next.kind == KindGeneric && cause != nil && len(next.stack) == 0 && !hasStackInChain(cause) {
		next.stack = captureStack(3)
	}
	return next
}

func (e *Error) clone() *Error {
	return &Error{
		kind:      e.kind,
		technical: e.technical,
		user:      e.user,
		fields:    e.fields.clone(),
		cause:     e.cause,
		stack:     cloneStack(e.stack),
	}
}

func cloneStack(in []uintptr) []uintptr {
	if len(in) == 0 {
		return nil
	}
	out := make([]uintptr, len(in))
	copy(out, in)
	return out
}

func captureStack(skip int) []uintptr {
	const maxDepth = 64
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip, pcs)
	if n <= 0 {
		return nil
	}
	return pcs[:n]
}

func hasStackInChain(err error) bool {
	const maxDepth = 32
	for i := 0; i < maxDepth && err != nil; i++ {
		if sp, ok := err.(interface{ Stack() []uintptr }); ok && len(sp.Stack()) != 0 {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// KindText 返回分类名（日志字段 error_kind）。
func (e *Error) KindText() string {
	return e.Kind().String()
}

// LogObject 让日志按写入顺序输出上下文。
func (e *Error) LogObject() zapcore.ObjectMarshaler {
	return e.Fields()
}
