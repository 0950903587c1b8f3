package domain

// Framework 是合规框架条目，Link 指向 compliance 目录下的说明页。
type Framework struct {
	Name        string `mapstructure:"name" json:"name"`
	Link        string `mapstructure:"link" json:"link"`
	Description string `mapstructure:"description" json:"description,omitempty"`
}

// Compliance 对应数据目录下的 compliance.json。
type Compliance struct {
	Frameworks []Framework `mapstructure:"frameworks" json:"frameworks"`
}

func (c Compliance) Names() []string {
	out := make([]string, 0, len(c.Frameworks))
	for _, f := range c.Frameworks {
		out = append(out, f.Name)
	}
	return out
}

// Filter 按白名单保留请求中的框架，未知名称直接丢弃；selected 为空时返回全部。
func (c Compliance) Filter(selected []string) []Framework {
	if len(selected) == 0 {
		return append([]Framework(nil), c.Frameworks...)
	}
	want := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		want[s] = struct{}{}
	}
	out := make([]Framework, 0, len(selected))
	for _, f := range c.Frameworks {
		if _, ok := want[f.Name]; ok {
			out = append(out, f)
		}
	}
	return out
}

type Control struct {
	ID     string `mapstructure:"id" json:"id"`
	Title  string `mapstructure:"title" json:"title"`
	Domain string `mapstructure:"domain" json:"domain"`
	Weight int    `mapstructure:"weight" json:"weight"`
}

// Controls 是某个评估 profile 的控制项清单。
type Controls struct {
	Profile  string    `mapstructure:"profile" json:"profile"`
	Controls []Control `mapstructure:"controls" json:"controls"`
}

// ProfileRegistry 对应数据目录下的 profiles.json，记录运行期新增的 profile。
type ProfileRegistry struct {
	Profiles []string `mapstructure:"profiles" json:"profiles"`
}
