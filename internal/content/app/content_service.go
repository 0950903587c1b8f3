package app

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"Viewfinder/internal/content/domain"
	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
)

const (
	ComplianceFile = "compliance.json"
	RegistryFile   = "profiles.json"
)

type ContentService struct {
	resolver  Resolver
	dirs      Dirs
	whitelist Whitelist
	log       logx.Logger
}

func NewContentService(r Resolver, dirs Dirs, wl Whitelist, log logx.Logger) *ContentService {
	if log == nil {
		log = logx.NewZapLogger(nil)
	}
	if wl.DefaultProfile == "" && len(wl.Profiles) > 0 {
		wl.DefaultProfile = wl.Profiles[0]
	}
	return &ContentService{resolver: r, dirs: dirs, whitelist: wl, log: log}
}

// Profiles 返回配置白名单加上注册表中新增的 profile。注册表不存在时只用配置。
func (s *ContentService) Profiles() ([]string, error) {
	out := slices.Clone(s.whitelist.Profiles)
	doc, err := s.resolver.LoadStructuredDocument(filepath.Join(s.dirs.Data, RegistryFile))
	if err != nil {
		if e, ok := errx.As(err); ok && e.Reason() == "file_not_found" {
			return out, nil
		}
		return nil, err
	}
	var reg domain.ProfileRegistry
	if err := doc.Decode(&reg); err != nil {
		return nil, err
	}
	for _, p := range reg.Profiles {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Profile 宽松校验 profile，非法或为空时回落到默认 profile。
func (s *ContentService) Profile(raw string) (string, error) {
	profiles, err := s.Profiles()
	if err != nil {
		return "", err
	}
	return s.resolver.ValidateEnum(raw, profiles, s.whitelist.DefaultProfile), nil
}

// LOB 严格校验业务线，它决定打开哪个文件，不能静默替换。
func (s *ContentService) LOB(raw string) (string, error) {
	return s.resolver.ValidateEnumStrict(raw, s.whitelist.LOBs, "lob")
}

// LOBFileName 默认 profile 用 lob-<lob>.html，其余用 lob-<lob>-<profile>.html。
func (s *ContentService) LOBFileName(lob, profile string) string {
	if profile == s.whitelist.DefaultProfile {
		return "lob-" + lob + ".html"
	}
	return "lob-" + lob + "-" + profile + ".html"
}

// LOBFilePath 校验入参并返回 lob 目录内的实际文件路径。
func (s *ContentService) LOBFilePath(rawLOB, rawProfile string) (string, error) {
	lob, err := s.LOB(rawLOB)
	if err != nil {
		return "", err
	}
	profile, err := s.Profile(rawProfile)
	if err != nil {
		return "", err
	}
	return s.contained(s.dirs.LOB, s.LOBFileName(lob, profile))
}

// LOBPage 读取 LOB 页面内容。
func (s *ContentService) LOBPage(rawLOB, rawProfile string) ([]byte, error) {
	path, err := s.LOBFilePath(rawLOB, rawProfile)
	if err != nil {
		return nil, err
	}
	return readFile(path)
}

// Compliance 加载合规框架清单。
func (s *ContentService) Compliance() (*domain.Compliance, error) {
	doc, err := s.resolver.LoadStructuredDocument(filepath.Join(s.dirs.Data, ComplianceFile))
	if err != nil {
		return nil, err
	}
	var c domain.Compliance
	if err := doc.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Frameworks 返回请求中合法的框架，非法名称被过滤掉。
func (s *ContentService) Frameworks(selected []string) ([]domain.Framework, error) {
	c, err := s.Compliance()
	if err != nil {
		return nil, err
	}
	out := c.Filter(selected)
	if len(selected) != 0 && len(out) != len(selected) {
		s.log.Info("some frameworks filtered out",
			zap.Int("provided_count", len(selected)),
			zap.Int("validated_count", len(out)),
		)
	}
	return out, nil
}

// FrameworkFilePath 只取 link 的文件名，必须落在 compliance 目录内。
func (s *ContentService) FrameworkFilePath(link string) (string, error) {
	return s.contained(s.dirs.Compliance, link)
}

// FrameworkPage 按框架名找到说明页并读取，名称必须在合规清单中。
func (s *ContentService) FrameworkPage(name string) ([]byte, error) {
	c, err := s.Compliance()
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(c.Frameworks, func(f domain.Framework) bool { return f.Name == name })
	if idx < 0 {
		return nil, errx.InvalidFramework(name, c.Names())
	}
	path, err := s.FrameworkFilePath(c.Frameworks[idx].Link)
	if err != nil {
		return nil, err
	}
	return readFile(path)
}

// ControlsFileName 是 profile 的控制项文件名。
func ControlsFileName(profile string) string {
	return "controls-" + profile + ".json"
}

// ControlsFilePath 宽松校验 profile 后返回控制项文件路径。
func (s *ContentService) ControlsFilePath(rawProfile string) (string, error) {
	profile, err := s.Profile(rawProfile)
	if err != nil {
		return "", err
	}
	return s.contained(s.dirs.Controls, ControlsFileName(profile))
}

func (s *ContentService) LoadControls(rawProfile string) (*domain.Controls, error) {
	path, err := s.ControlsFilePath(rawProfile)
	if err != nil {
		return nil, err
	}
	doc, err := s.resolver.LoadStructuredDocument(path)
	if err != nil {
		return nil, err
	}
	var c domain.Controls
	if err := doc.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContentService) contained(base, name string) (string, error) {
	rp := s.resolver.ResolveContainedPath(base, name)
	if rp.Contained {
		return rp.Path, nil
	}
	// 越界和不存在对外一致，拒绝原因只进日志上下文
	if rp.NotExist {
		return "", errx.FileNotFound(rp.Candidate)
	}
	return "", errx.FileNotFound(rp.Candidate).WithField("reason", rp.Reason)
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errx.FileNotFound(path)
		}
		return nil, errx.ReadFailed(path, err.Error())
	}
	return b, nil
}
