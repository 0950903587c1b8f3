package cmd

import (
	"github.com/spf13/cobra"

	contentapp "Viewfinder/internal/content/app"
	"Viewfinder/internal/shared/config"
	"Viewfinder/internal/shared/logs"
	"Viewfinder/internal/shared/resolver"
	"Viewfinder/modules/kit/logx"
)

type deps struct {
	log      logx.Logger
	resolver *resolver.Resolver
	content  *contentapp.ContentService
}

// setup 加载配置并初始化日志，日志写到命令的 stderr。
func setup(cmd *cobra.Command) (*deps, error) {
	if err := config.Load(cfgFile); err != nil {
		return nil, err
	}
	if err := logs.InitWithWriter(config.Conf.App.Name, config.Conf.Log, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	log := logs.Logger()
	r := resolver.New(log)
	c := config.Conf
	content := contentapp.NewContentService(r, contentapp.Dirs{
		LOB:        c.Content.LOBDir,
		Compliance: c.Content.ComplianceDir,
		Controls:   c.Content.ControlsDir,
		Data:       c.Content.DataDir,
	}, contentapp.Whitelist{
		Profiles:       c.Whitelist.Profiles,
		DefaultProfile: c.Whitelist.DefaultProfile,
		LOBs:           c.Whitelist.LOBs,
	}, log)
	return &deps{log: log, resolver: r, content: content}, nil
}
