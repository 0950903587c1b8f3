package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"

	"Viewfinder/modules/kit/errx"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// 当前配置来源；Watch 复用它监听文件变更。
var current *viper.Viper

var requiredKeys = []string{
	"content.lob_dir",
	"content.compliance_dir",
	"content.controls_dir",
	"content.data_dir",
	"whitelist.profiles",
	"whitelist.default_profile",
}

// typedKey 按声明顺序校验，多个 key 同时出错时总是报告第一个。
type typedKey struct {
	key  string
	kind reflect.Kind
}

var typedKeys = []typedKey{
	{"httpserver.port", reflect.Int},
	{"whitelist.profiles", reflect.Slice},
	{"whitelist.lobs", reflect.Slice},
	{"log.compress", reflect.Bool},
}

func load(configPath string) (*Config, error) {
	if !fileExist(configPath) {
		return nil, errx.FileNotFound(configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetDefault("app.name", "viewfinder")
	v.SetDefault("httpserver.host", "0.0.0.0")
	v.SetDefault("httpserver.port", 8080)
	v.SetDefault("log.level", "warning")
	v.SetDefault("log.max_size", 100)

	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, errx.DecodeFailed(configPath, 0, parseErr.Error())
		}
		return nil, errx.ReadFailed(configPath, err.Error())
	}
	if err := validate(v); err != nil {
		return nil, err.WithField("file_path", configPath)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errx.InvalidStructure(configPath, err.Error())
	}
	c.Content = c.Content.resolve(filepath.Dir(configPath))
	if c.ErrorPages.TemplateDir != "" && !filepath.IsAbs(c.ErrorPages.TemplateDir) {
		c.ErrorPages.TemplateDir = filepath.Join(filepath.Dir(configPath), c.ErrorPages.TemplateDir)
	}
	current = v
	return &c, nil
}

func validate(v *viper.Viper) *errx.Error {
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return errx.MissingKey(key)
		}
	}
	for _, tk := range typedKeys {
		raw := v.Get(tk.key)
		if raw == nil {
			continue
		}
		got := reflect.TypeOf(raw).Kind()
		if !sameKind(tk.kind, got) {
			return errx.InvalidType(tk.key, tk.kind.String(), got.String())
		}
	}
	return nil
}

// sameKind 把 yaml 解出的各种整型视为 int。
func sameKind(want, got reflect.Kind) bool {
	if want == reflect.Int {
		switch got {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		}
		return false
	}
	return want == got
}

// resolve 把相对目录转换为相对配置文件所在目录的绝对路径。
func (c ContentConfig) resolve(baseDir string) ContentConfig {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	return ContentConfig{
		LOBDir:        abs(c.LOBDir),
		ComplianceDir: abs(c.ComplianceDir),
		ControlsDir:   abs(c.ControlsDir),
		DataDir:       abs(c.DataDir),
	}
}

// Watch 监听配置文件变更。配置在进程生命周期内只读，变更只通知调用方（通常打 WARNING 提示重启）。
func Watch(onChange func(e fsnotify.Event)) error {
	if current == nil {
		return fmt.Errorf("config not loaded")
	}
	if onChange == nil {
		return nil
	}
	current.OnConfigChange(onChange)
	current.WatchConfig()
	return nil
}

// Dump 返回当前配置文件路径，启动日志使用。
func Dump() string {
	if current == nil {
		return ""
	}
	return current.ConfigFileUsed()
}
