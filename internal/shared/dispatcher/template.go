package dispatcher

import (
	"Viewfinder/modules/kit/errx"
)

// 对外暴露的模板名。
const (
	TemplateFileNotFound    = "file-not-found"
	TemplateValidationError = "validation-error"
	TemplateJSONError       = "json-error"
	TemplateSystemError     = "system-error"
)

// TemplateNames 列出全部模板名，system-error 为兜底。
var TemplateNames = []string{
	TemplateFileNotFound,
	TemplateValidationError,
	TemplateJSONError,
	TemplateSystemError,
}

// TemplateFor 按错误分类选择模板：静态映射，未知分类一律 system-error。
func TemplateFor(err error) string {
	e, ok := errx.As(err)
	if !ok {
		return TemplateSystemError
	}
	switch e.Kind() {
	case errx.KindFileSystem:
		return TemplateFileNotFound
	case errx.KindValidation:
		return TemplateValidationError
	case errx.KindDocument, errx.KindConfig:
		return TemplateJSONError
	case errx.KindProfile, errx.KindGeneric:
		return TemplateSystemError
	default:
		return TemplateSystemError
	}
}

// candidates 返回渲染候选链：分类模板 -> system-error。内置纯文本兜底不在链上。
func candidates(name string) []string {
	if name == TemplateSystemError {
		return []string{TemplateSystemError}
	}
	return []string{name, TemplateSystemError}
}
