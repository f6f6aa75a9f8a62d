package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storyscore/internal/app"
	"storyscore/internal/config"
)

func newRootCommand() *cobra.Command {
	var opts app.Options
	var configFlag string
	var scheduled bool

	rootCmd := &cobra.Command{
		Use:           "storyscore",
		Short:         "Score business requirement stories with an LLM and track them across runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.InputDir == "" {
				return fmt.Errorf("--input is required")
			}
			if configFlag != "" {
				os.Setenv("CONFIG_PATH", configFlag)
			}
			cfg := config.LoadConfig()

			if scheduled {
				return app.RunOnSchedule(cfg, opts)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg, opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "Directory of per-group CSV files to analyze")
	rootCmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Base directory for scored output (default from config)")
	rootCmd.Flags().StringVarP(&opts.PreviousDir, "previous", "p", "", "Previous run's scored output directory, for reconciliation")
	rootCmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Restrict the run to one group")
	rootCmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Cap the number of records analyzed (0 = no cap)")
	rootCmd.Flags().BoolVar(&scheduled, "schedule", false, "Keep running on the cron schedule from config")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	return rootCmd
}
