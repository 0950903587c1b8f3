package config

type Config struct {
	App        AppConfig        `yaml:"app" mapstructure:"app"`
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Content    ContentConfig    `yaml:"content" mapstructure:"content"`
	ErrorPages ErrorPagesConfig `yaml:"error_pages" mapstructure:"error_pages"`
	Whitelist  WhitelistConfig  `yaml:"whitelist" mapstructure:"whitelist"`
}

type AppConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Env  string `yaml:"env" mapstructure:"env"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"` // 为空则只写 stderr
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug 开启 DEBUG，其余值只输出 WARNING 及以上
}

// ContentConfig 是 SafeResolver 允许访问的基目录，全部只读。
type ContentConfig struct {
	LOBDir        string `yaml:"lob_dir" mapstructure:"lob_dir"`
	ComplianceDir string `yaml:"compliance_dir" mapstructure:"compliance_dir"`
	ControlsDir   string `yaml:"controls_dir" mapstructure:"controls_dir"`
	DataDir       string `yaml:"data_dir" mapstructure:"data_dir"`
}

type ErrorPagesConfig struct {
	// TemplateDir 为空时使用内置模板。
	TemplateDir string `yaml:"template_dir" mapstructure:"template_dir"`
}

type WhitelistConfig struct {
	Profiles       []string `yaml:"profiles" mapstructure:"profiles"`
	DefaultProfile string   `yaml:"default_profile" mapstructure:"default_profile"`
	LOBs           []string `yaml:"lobs" mapstructure:"lobs"`
}
