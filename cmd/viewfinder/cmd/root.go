package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "viewfinder",
	Short: "Viewfinder - digital sovereignty readiness assessment",
	Long: `Viewfinder serves the assessment content pages and tooling.

Commands:
  serve    - start the HTTP server
  check    - validate structured documents (json/yaml/toml)
  profile  - manage assessment profiles`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/conf.yml searched upward)")
}
