package resolver

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
)

// Resolver 负责入参白名单校验、目录内路径解析和结构化文件加载。
// 无状态，可并发使用。
type Resolver struct {
	log logx.Logger
}

func New(log logx.Logger) *Resolver {
	if log == nil {
		log = logx.NewZapLogger(nil)
	}
	return &Resolver{log: log}
}

// ValidateEnum 宽松校验：不在白名单内时返回 def。
func (r *Resolver) ValidateEnum(value string, allowed []string, def string) string {
	if slices.Contains(allowed, value) {
		return value
	}
	r.log.Info("enum value not allowed, using default",
		zap.String("provided_value", value),
		zap.String("default_value", def),
		zap.Strings("valid_values", allowed),
	)
	return def
}

// ValidateEnumStrict 严格校验：不在白名单内直接失败，用于决定打开哪个文件的入参。
func (r *Resolver) ValidateEnumStrict(value string, allowed []string, field string) (string, error) {
	if slices.Contains(allowed, value) {
		return value, nil
	}
	return "", errx.InvalidEnumValue(field, value, allowed)
}

// ResolvedPath 是路径解析结果。Contained 为 false 时 Path 为空。
type ResolvedPath struct {
	Path      string
	Candidate string
	Contained bool
	NotExist  bool
	Reason    string
}

// ResolveContainedPath 只取 candidate 的最后一段文件名拼到 base 下，
// 解析符号链接后必须仍落在 base 目录内。任何失败都返回 Contained=false。
func (r *Resolver) ResolveContainedPath(base, candidate string) ResolvedPath {
	name := candidate
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	out := ResolvedPath{Candidate: filepath.Join(base, name)}
	if hasParentSegment(candidate) {
		out.Reason = "parent directory segment"
		return r.refuse(out, candidate)
	}
	if name == "" || name == "." || name == ".." {
		out.Reason = "invalid file name"
		return r.refuse(out, candidate)
	}

	baseReal, err := canonical(base)
	if err != nil {
		out.Reason = "base directory unavailable: " + err.Error()
		return r.refuse(out, candidate)
	}
	resolved, err := canonical(out.Candidate)
	if err != nil {
		out.NotExist = errors.Is(err, fs.ErrNotExist)
		out.Reason = "cannot resolve path: " + err.Error()
		return r.refuse(out, candidate)
	}
	rel, err := filepath.Rel(baseReal, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		out.Reason = "path escapes base directory"
		return r.refuse(out, candidate)
	}

	out.Path = resolved
	out.Contained = true
	r.log.Debug("path resolved", zap.String("file_path", resolved))
	return out
}

func (r *Resolver) refuse(out ResolvedPath, candidate string) ResolvedPath {
	r.log.Debug("path refused",
		zap.String("candidate", candidate),
		zap.String("full_path", out.Candidate),
		zap.String("reason", out.Reason),
	)
	return out
}

// hasParentSegment 按 / 和 \ 切分，任一段为 ".." 即视为越界。
func hasParentSegment(candidate string) bool {
	return slices.Contains(strings.FieldsFunc(candidate, func(r rune) bool {
		return r == '/' || r == '\\'
	}), "..")
}

func canonical(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
