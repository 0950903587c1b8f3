package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"Viewfinder/internal/shared/config"
	"Viewfinder/internal/shared/logs"
	"Viewfinder/internal/shared/resolver"
	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate structured documents (json, yaml, toml)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// check 不依赖配置文件，日志用默认级别。
func runCheck(cmd *cobra.Command, args []string) error {
	if err := logs.InitWithWriter("viewfinder", config.LogConfig{}, cmd.ErrOrStderr()); err != nil {
		return err
	}
	defer logs.Sync()
	log := logs.Logger()
	r := resolver.New(log)

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		doc, err := r.LoadStructuredDocument(path)
		if err != nil {
			failed++
			e := errx.Wrap(err)
			logx.ReportSysErrorWithLoggerContext(cmd.Context(), log, logx.NewSysLog("check document", e))
			fmt.Fprintf(out, "FAIL %s: %s (%s)\n", path, e.CodeText(), e.Reason())
			continue
		}
		fmt.Fprintf(out, "OK   %s: %d top-level keys\n", path, len(doc.Data))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}
