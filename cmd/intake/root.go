package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "intake",
		Short:         "Appliance repair service intake",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log.level")

	cmd.AddCommand(
		newServeCmd(flags),
		newSubmitCmd(flags),
		newRenderCmd(flags),
	)
	return cmd
}
