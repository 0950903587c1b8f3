package dispatcher

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"Viewfinder/internal/shared/resolver"
	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
)

var idInBody = regexp.MustCompile(`ERR-\d{8}-[0-9A-F]{8}`)

type harness struct {
	engine *gin.Engine
	logs   *observer.ObservedLogs
	log    logx.Logger
	disp   *Dispatcher
	last   *Occurrence
}

func newHarness(t *testing.T, r Renderer, opts ...Option) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := logx.NewZapLogger(zap.New(core))
	h := &harness{engine: gin.New(), logs: logs, log: log}
	h.disp = New(log, r, opts...)
	h.engine.Use(func(c *gin.Context) {
		c.Next()
		if occ, ok := OccurrenceFrom(c); ok {
			h.last = occ
		}
	})
	h.engine.Use(h.disp.Middleware())
	return h
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.engine.ServeHTTP(w, req)
	return w
}

func TestDispatch_缺失文件渲染file_not_found且不泄露路径(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	missing := filepath.Join(dir, "lob-finance.json")
	h.engine.GET("/lob", func(c *gin.Context) {
		if _, err := resolver.New(h.log).LoadStructuredDocument(missing); err != nil {
			_ = c.Error(err)
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := h.get("/lob")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际 %d", w.Code)
	}
	if h.last == nil || h.last.Response.Template != TemplateFileNotFound {
		t.Fatalf("期望 file-not-found，实际 %+v", h.last)
	}
	body := w.Body.String()
	id := idInBody.FindString(body)
	if id == "" || id != w.Header().Get("X-Error-ID") || id != h.last.ErrorID {
		t.Fatalf("期望 body/头/记录中的 error id 一致，body=%q header=%q", id, w.Header().Get("X-Error-ID"))
	}
	if strings.Contains(body, dir) {
		t.Fatalf("body 不应包含绝对路径: %s", body)
	}
	if strings.Contains(body, "goroutine") {
		t.Fatalf("body 不应包含堆栈")
	}

	errs := h.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 {
		t.Fatalf("期望一条 ERROR，实际 %d", len(errs))
	}
	ctx := errs[0].ContextMap()
	if ctx["error_id"] != id || ctx["error_code"] != "FILE_SYSTEM_ERROR" {
		t.Fatalf("期望日志带 error_id 与 error_code，实际 %v", ctx)
	}
}

func TestDispatch_尾逗号配置渲染json_error只露文件名(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "compliance.json")
	if err := os.WriteFile(path, []byte(`{"frameworks": ["NIST"],}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h.engine.GET("/frameworks", func(c *gin.Context) {
		if _, err := resolver.New(h.log).LoadStructuredDocument(path); err != nil {
			h.disp.Dispatch(c, err)
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := h.get("/frameworks")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际 %d", w.Code)
	}
	if h.last.Response.Template != TemplateJSONError {
		t.Fatalf("期望 json-error，实际 %s", h.last.Response.Template)
	}
	body := w.Body.String()
	if !strings.Contains(body, "compliance.json") {
		t.Fatalf("期望 body 显示文件名")
	}
	if strings.Contains(body, dir) {
		t.Fatalf("body 不应包含完整路径: %s", body)
	}
}

func TestDispatch_时钟与编号可注入(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, nil,
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func(time.Time) string { return "ERR-20260102-DEADBEEF" }),
	)
	h.engine.GET("/x", func(c *gin.Context) {
		_ = c.Error(errx.InvalidProfile("bogus", []string{"Security"}))
	})

	w := h.get("/x")
	if got := w.Header().Get("X-Error-ID"); got != "ERR-20260102-DEADBEEF" {
		t.Fatalf("期望注入的编号，实际 %s", got)
	}
	if !strings.Contains(w.Body.String(), "2026-01-02 10:00:00") {
		t.Fatalf("期望 body 含时间戳")
	}
	want := Response{
		Template:    TemplateValidationError,
		ErrorID:     "ERR-20260102-DEADBEEF",
		UserMessage: errx.InvalidProfile("bogus", nil).UserMessage(),
		Timestamp:   "2026-01-02 10:00:00",
		Status:      http.StatusInternalServerError,
	}
	if h.last.Response != want {
		t.Fatalf("期望 %+v，实际 %+v", want, h.last.Response)
	}
}

func TestDispatch_未归类错误走system_error(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/x", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded at /var/lib/x"))
	})

	w := h.get("/x")
	if h.last.Response.Template != TemplateSystemError {
		t.Fatalf("期望 system-error，实际 %s", h.last.Response.Template)
	}
	if strings.Contains(w.Body.String(), "/var/lib/x") {
		t.Fatalf("技术信息不应进入 body")
	}
	errs := h.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 || errs[0].ContextMap()["error_code"] != "VIEWFINDER_ERROR" {
		t.Fatalf("期望一条 VIEWFINDER_ERROR 日志，实际 %v", errs)
	}
}

func TestDispatch_重复失败只渲染一次(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/x", func(c *gin.Context) {
		h.disp.Dispatch(c, errx.FileNotFound("/a"))
		_ = c.Error(errx.MissingKey("b"))
		h.disp.Dispatch(c, errx.Unclassified("c"))
	})

	w := h.get("/x")
	if n := strings.Count(w.Body.String(), "<!DOCTYPE html>"); n != 1 {
		t.Fatalf("期望只渲染一次，实际 %d", n)
	}
	if h.last.Response.Template != TemplateFileNotFound {
		t.Fatalf("期望第一次失败生效，实际 %s", h.last.Response.Template)
	}
	if n := h.logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 1 {
		t.Fatalf("期望一条 ERROR，实际 %d", n)
	}
}

func TestDispatch_已写出响应不再渲染(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		_ = c.Error(errx.FileNotFound("/a"))
	})

	w := h.get("/x")
	if w.Code != http.StatusOK || w.Body.String() != "partial" {
		t.Fatalf("期望保持原响应，实际 %d %q", w.Code, w.Body.String())
	}
	if h.last != nil {
		t.Fatalf("期望没有新的失败记录")
	}
	errs := h.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 {
		t.Fatalf("期望一条 ERROR，实际 %d", len(errs))
	}
	ctx := errs[0].ContextMap()
	if ctx["already_rendered"] != true {
		t.Fatalf("期望标记 already_rendered，实际 %v", ctx)
	}
	if ctx["error_code"] != "FILE_SYSTEM_ERROR" {
		t.Fatalf("期望携带 error_code，实际 %v", ctx["error_code"])
	}
}

func TestMiddleware_panic记CRITICAL并渲染system_error(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/boom", func(c *gin.Context) {
		items := []int{1}
		_ = items[len(c.Query("i"))+3]
	})

	w := h.get("/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际 %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, FatalUserMessage) {
		t.Fatalf("期望固定致命文案，实际 %s", body)
	}
	if strings.Contains(body, "goroutine") || strings.Contains(body, "index out of range") {
		t.Fatalf("body 不应包含运行时细节")
	}
	if h.last == nil || !h.last.Fatal || h.last.Response.Template != TemplateSystemError {
		t.Fatalf("期望致命记录，实际 %+v", h.last)
	}

	crit := h.logs.FilterLevelExact(logx.CriticalLevel).All()
	if len(crit) != 1 {
		t.Fatalf("期望一条 CRITICAL，实际 %d", len(crit))
	}
	ctx := crit[0].ContextMap()
	if ctx["file"] != "dispatcher_test.go" {
		t.Fatalf("期望记录 panic 所在文件，实际 %v", ctx["file"])
	}
	if ctx["fatal_kind"] != "runtime_error" || ctx["error_id"] != h.last.ErrorID {
		t.Fatalf("期望 fatal_kind 与 error_id，实际 %v", ctx)
	}
}

func TestMiddleware_显式失败后panic不重复渲染(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/x", func(c *gin.Context) {
		h.disp.Dispatch(c, errx.FileNotFound("/a"))
		panic("late")
	})

	w := h.get("/x")
	if n := strings.Count(w.Body.String(), "<!DOCTYPE html>"); n != 1 {
		t.Fatalf("期望只渲染一次，实际 %d", n)
	}
	if h.last.Fatal {
		t.Fatalf("期望保留显式失败记录")
	}
	crit := h.logs.FilterLevelExact(logx.CriticalLevel).All()
	if len(crit) != 1 || crit[0].ContextMap()["already_rendered"] != true {
		t.Fatalf("期望 CRITICAL 标记 already_rendered，实际 %v", crit)
	}
}

func TestMiddleware_断开的连接不渲染(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/x", func(c *gin.Context) {
		panic(&net.OpError{Op: "write", Net: "tcp", Err: &os.SyscallError{Syscall: "write", Err: syscall.EPIPE}})
	})

	w := h.get("/x")
	if w.Header().Get("X-Error-ID") != "" || strings.Contains(w.Body.String(), "<!DOCTYPE") {
		t.Fatalf("期望不渲染错误页")
	}
	if n := h.logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Fatalf("期望一条 WARNING，实际 %d", n)
	}
	if n := h.logs.FilterLevelExact(logx.CriticalLevel).Len(); n != 0 {
		t.Fatalf("期望没有 CRITICAL，实际 %d", n)
	}
}

func TestMiddleware_ErrAbortHandler原样抛出(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.GET("/x", func(c *gin.Context) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("期望 ErrAbortHandler，实际 %v", rec)
		}
	}()
	h.get("/x")
	t.Fatalf("期望 panic")
}

func TestRender_缺失模板降级到system_error(t *testing.T) {
	fsys := fstest.MapFS{
		"system-error.html": {Data: []byte("SYS {{.ErrorID}} {{.UserMessage}}")},
	}
	h := newHarness(t, NewTemplateRenderer(fsys))
	h.engine.GET("/x", func(c *gin.Context) {
		_ = c.Error(errx.DecodeFailed("/srv/data/a.json", 1, "bad"))
	})

	w := h.get("/x")
	if !strings.HasPrefix(w.Body.String(), "SYS ERR-") {
		t.Fatalf("期望使用 system-error，实际 %q", w.Body.String())
	}
	if h.last.Response.Template != TemplateSystemError {
		t.Fatalf("期望记录实际模板 system-error，实际 %s", h.last.Response.Template)
	}
	if n := h.logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Fatalf("期望一条模板缺失 WARNING，实际 %d", n)
	}
}

func TestRender_全部缺失时纯文本兜底(t *testing.T) {
	h := newHarness(t, NewTemplateRenderer(fstest.MapFS{
		"system-error.html": {Data: []byte("{{.Broken")},
	}))
	h.engine.GET("/x", func(c *gin.Context) {
		_ = c.Error(errx.FileNotFound("/a"))
	})

	w := h.get("/x")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际 %d", w.Code)
	}
	if h.last.Response.Template != "plain" {
		t.Fatalf("期望纯文本兜底，实际 %s", h.last.Response.Template)
	}
	if !idInBody.MatchString(w.Body.String()) {
		t.Fatalf("期望兜底页含 error id")
	}
}

func TestNewTemplateRenderer_覆盖目录优先(t *testing.T) {
	override := fstest.MapFS{
		"file-not-found.html": {Data: []byte("CUSTOM {{.ErrorID}}")},
	}
	r := NewTemplateRenderer(override, BuiltinTemplates())

	out, err := r.Render(TemplateFileNotFound, View{ErrorID: "ERR-20260101-00000000"})
	if err != nil || string(out) != "CUSTOM ERR-20260101-00000000" {
		t.Fatalf("期望使用覆盖模板，实际 %q %v", out, err)
	}
	out, err = r.Render(TemplateSystemError, View{ErrorID: "ERR-20260101-00000000"})
	if err != nil || !strings.Contains(string(out), "System Error") {
		t.Fatalf("期望其余模板回落到内置，实际 %v", err)
	}
}

func TestPlainFallback_转义(t *testing.T) {
	out := string(PlainFallback(View{ErrorID: "<x>", UserMessage: "a&b"}))
	if strings.Contains(out, "<x>") || !strings.Contains(out, "a&amp;b") {
		t.Fatalf("期望 HTML 转义，实际 %s", out)
	}
}
