package dispatcher

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var builtin embed.FS

// ErrTemplateMissing 模板未找到或解析失败。
var ErrTemplateMissing = errors.New("dispatcher: template missing")

// View 是模板可见的全部数据，技术细节只能通过 Admin 进入 json-error。
type View struct {
	ErrorID     string
	UserMessage string
	Timestamp   string
	Year        int
	Admin       *AdminDetail
}

// AdminDetail 给管理员看的解析细节：只有文件名，没有完整路径。
type AdminDetail struct {
	FileName string
	Issue    string
}

// Renderer 把模板名和视图渲染成完整 body，失败时不得写出任何内容。
type Renderer interface {
	Render(name string, view View) ([]byte, error)
}

// TemplateRenderer 启动时一次性解析模板，之后只读。
type TemplateRenderer struct {
	tpls map[string]*template.Template
	errs map[string]error
}

// BuiltinTemplates 返回内置模板目录。
func BuiltinTemplates() fs.FS {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewTemplateRenderer 按顺序在 layers 中查找每个模板，先找到的生效。
func NewTemplateRenderer(layers ...fs.FS) *TemplateRenderer {
	r := &TemplateRenderer{
		tpls: make(map[string]*template.Template, len(TemplateNames)),
		errs: make(map[string]error),
	}
	for _, name := range TemplateNames {
		for _, layer := range layers {
			if layer == nil {
				continue
			}
			t, err := template.ParseFS(layer, name+".html")
			if err != nil {
				r.errs[name] = err
				continue
			}
			r.tpls[name] = t
			delete(r.errs, name)
			break
		}
	}
	return r
}

// Missing 返回未能加载的模板及原因，启动时打 WARNING 用。
func (r *TemplateRenderer) Missing() map[string]error {
	out := make(map[string]error, len(r.errs))
	for k, v := range r.errs {
		out[k] = v
	}
	return out
}

func (r *TemplateRenderer) Render(name string, view View) ([]byte, error) {
	t, ok := r.tpls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// PlainFallback 不依赖任何模板引擎的最后兜底页面。
func PlainFallback(view View) []byte {
	msg := view.UserMessage
	if msg == "" {
		msg = "An unexpected error occurred."
	}
	return []byte("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Error</title></head><body>" +
		"<h1>Error</h1><p>" + html.EscapeString(msg) + "</p>" +
		"<p>Error ID: " + html.EscapeString(view.ErrorID) + "</p>" +
		"<p>Time: " + html.EscapeString(view.Timestamp) + "</p>" +
		"</body></html>\n")
}
