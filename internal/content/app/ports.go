package app

import (
	"Viewfinder/internal/shared/resolver"
)

// Resolver 是内容服务依赖的安全解析能力。
type Resolver interface {
	ValidateEnum(value string, allowed []string, def string) string
	ValidateEnumStrict(value string, allowed []string, field string) (string, error)
	ResolveContainedPath(base, candidate string) resolver.ResolvedPath
	LoadStructuredDocument(path string) (*resolver.Document, error)
}

// Dirs 是内容服务允许访问的基目录。
type Dirs struct {
	LOB        string
	Compliance string
	Controls   string
	Data       string
}

// Whitelist 是配置给出的基础白名单。
type Whitelist struct {
	Profiles       []string
	DefaultProfile string
	LOBs           []string
}
