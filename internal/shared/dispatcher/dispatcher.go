package dispatcher

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
	"Viewfinder/modules/kit/tracex"
)

// FailureStatus 所有失败统一使用的状态码。
const FailureStatus = http.StatusInternalServerError

// FatalUserMessage 致命错误对用户展示的固定文案。
const FatalUserMessage = "A critical system error occurred. Our team has been notified."

const (
	timestampLayout = "2006-01-02 15:04:05"
	templatePlain   = "plain"
)

// Response 是一次失败呈现的结果。
type Response struct {
	Template    string
	ErrorID     string
	UserMessage string
	Timestamp   string
	Status      int
}

// Dispatcher 是请求边界上的终端错误处理器，进程内注册一次。
type Dispatcher struct {
	log      logx.Logger
	renderer Renderer
	now      func() time.Time
	newID    func(time.Time) string
}

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func WithIDGenerator(gen func(time.Time) string) Option {
	return func(d *Dispatcher) {
		if gen != nil {
			d.newID = gen
		}
	}
}

// New renderer 为 nil 时只用内置模板。
func New(log logx.Logger, renderer Renderer, opts ...Option) *Dispatcher {
	if log == nil {
		log = logx.NewZapLogger(nil)
	}
	if renderer == nil {
		renderer = NewTemplateRenderer(BuiltinTemplates())
	}
	d := &Dispatcher{
		log:      log,
		renderer: renderer,
		now:      time.Now,
		newID:    NewErrorID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Middleware 注册两条通道：handler 通过 c.Error 上抛的显式失败，以及 recover 到的致命错误。
// 必须挂在所有业务 handler 之前。
func (d *Dispatcher) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := stateOf(c)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			d.recovered(c, st, rec)
		}()

		c.Next()

		if len(c.Errors) > 0 {
			d.dispatch(c, st, c.Errors.Last().Err)
		}
	}
}

// Dispatch 处理显式失败，handler 调用后应立即 return。
func (d *Dispatcher) Dispatch(c *gin.Context, err error) {
	if err == nil {
		return
	}
	d.dispatch(c, stateOf(c), err)
}

func (d *Dispatcher) dispatch(c *gin.Context, st *requestState, err error) {
	appErr := errx.Wrap(err)
	if !st.claim(c.Writer) {
		ctx := c.Request.Context()
		if st.occurrence != nil {
			// 同一请求已经呈现过失败，只保留第一次
			d.log.WithContext(ctx).Debug("dispatch skipped, failure already dispatched",
				zap.String("error_code", appErr.CodeText()),
				zap.String("error_id", st.occurrence.ErrorID))
		} else {
			// handler 已写出响应：不再渲染，但失败本身必须落日志
			logx.ReportSysErrorWithLoggerContext(ctx, d.log, logx.NewSysLog("request failed", appErr),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Bool("already_rendered", true),
			)
		}
		c.Abort()
		return
	}

	now := d.now()
	id := d.newID(now)
	ctx := tracex.WithErrorID(c.Request.Context(), id)
	c.Request = c.Request.WithContext(ctx)

	logx.ReportSysErrorWithLoggerContext(ctx, d.log, logx.NewSysLog("request failed", appErr),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)

	view := View{
		ErrorID:     id,
		UserMessage: appErr.UserMessage(),
		Timestamp:   now.Format(timestampLayout),
		Year:        now.Year(),
	}
	name := TemplateFor(appErr)
	if name == TemplateJSONError {
		view.Admin = adminDetail(appErr)
	}
	st.occurrence = &Occurrence{
		ErrorID:   id,
		Timestamp: now,
		Source:    appErr,
		Response:  d.write(c, name, view),
	}
}

func (d *Dispatcher) recovered(c *gin.Context, st *requestState, rec any) {
	ctx := c.Request.Context()

	if isBrokenPipe(rec) {
		d.log.WithContext(ctx).Warn("client connection closed",
			zap.String("path", c.Request.URL.Path),
			zap.Any("error", rec),
		)
		c.Abort()
		return
	}

	site := panicSite()
	fields := []zap.Field{
		zap.String("fatal_kind", fatalKind(rec)),
		zap.String("message", fmt.Sprint(rec)),
		zap.String("file", site.file),
		zap.Int("line", site.line),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.ByteString("stack", debug.Stack()),
	}

	if !st.claim(c.Writer) {
		logx.ReportCriticalWithLoggerContext(ctx, d.log, "fatal error after response rendered",
			append(fields, zap.Bool("already_rendered", true))...)
		c.Abort()
		return
	}

	now := d.now()
	id := d.newID(now)
	ctx = tracex.WithErrorID(ctx, id)
	c.Request = c.Request.WithContext(ctx)
	logx.ReportCriticalWithLoggerContext(ctx, d.log, "fatal error", fields...)

	resp := d.write(c, TemplateSystemError, View{
		ErrorID:     id,
		UserMessage: FatalUserMessage,
		Timestamp:   now.Format(timestampLayout),
		Year:        now.Year(),
	})
	st.occurrence = &Occurrence{
		ErrorID:   id,
		Timestamp: now,
		Source:    errx.Unclassified(fmt.Sprint(rec)),
		Fatal:     true,
		Response:  resp,
	}
}

// write 先完整渲染 body，再写状态码和内容，最后终止请求。
func (d *Dispatcher) write(c *gin.Context, name string, view View) Response {
	body, used := d.render(c, name, view)
	c.Header("X-Error-ID", view.ErrorID)
	c.Data(FailureStatus, "text/html; charset=utf-8", body)
	c.Abort()
	return Response{
		Template:    used,
		ErrorID:     view.ErrorID,
		UserMessage: view.UserMessage,
		Timestamp:   view.Timestamp,
		Status:      FailureStatus,
	}
}

func (d *Dispatcher) render(c *gin.Context, name string, view View) ([]byte, string) {
	for _, candidate := range candidates(name) {
		if candidate == TemplateSystemError && name != TemplateSystemError {
			// 降级到通用模板时不带管理员细节。
			view.Admin = nil
		}
		body, err := d.renderer.Render(candidate, view)
		if err == nil {
			return body, candidate
		}
		d.log.WithContext(c.Request.Context()).Warn("error template unavailable",
			zap.String("template", candidate),
			zap.Error(err),
		)
	}
	return PlainFallback(view), templatePlain
}

func adminDetail(e *errx.Error) *AdminDetail {
	fields := e.Fields()
	path := fields.GetString("file_path")
	if path == "" {
		return nil
	}
	issue := fields.GetString("json_error_message")
	if issue == "" {
		issue = fields.GetString("reason")
	}
	base := filepath.Base(path)
	if issue != "" {
		issue = strings.ReplaceAll(issue, path, base)
	}
	return &AdminDetail{FileName: base, Issue: issue}
}

func fatalKind(rec any) string {
	switch rec.(type) {
	case runtime.Error:
		return "runtime_error"
	case error:
		return "panic_error"
	default:
		return "panic_value"
	}
}

func isBrokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}

type site struct {
	file string
	line int
}

// panicSite 找到触发 panic 的第一帧业务代码，只保留文件名。
func panicSite() site {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	seenPanic := false
	for {
		f, more := frames.Next()
		if f.Function == "runtime.gopanic" {
			seenPanic = true
		} else if seenPanic && !isRuntimeFrame(f.Function) {
			return site{file: filepath.Base(f.File), line: f.Line}
		}
		if !more {
			break
		}
	}
	return site{file: "unknown"}
}

func isRuntimeFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") || strings.HasPrefix(fn, "internal/runtime/")
}
