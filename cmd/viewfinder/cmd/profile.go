package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	profileapp "Viewfinder/internal/profile/app"
	"Viewfinder/internal/shared/config"
	"Viewfinder/internal/shared/logs"
	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage assessment profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile from the default profile's controls",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCreate,
}

func init() {
	profileCmd.AddCommand(profileCreateCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	d, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logs.Sync()

	svc := profileapp.NewProfileService(d.content, config.Conf.Content.DataDir, config.Conf.Content.ControlsDir, d.log)
	res, err := svc.Create(args[0])
	if err != nil {
		e := errx.Wrap(err)
		logx.ReportSysErrorWithLoggerContext(cmd.Context(), d.log, logx.NewSysLog("profile create", e))
		return errors.New(e.UserMessage())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "profile %s created\n", res.Name)
	fmt.Fprintf(out, "  controls: %s\n", res.ControlsPath)
	fmt.Fprintf(out, "  registry: %s\n", res.RegistryPath)
	if res.BackupPath != "" {
		fmt.Fprintf(out, "  backup:   %s\n", res.BackupPath)
	}
	return nil
}
