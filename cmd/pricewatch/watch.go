package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/schedule"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run repeatedly on a cron schedule",
		Long: `Watch performs the same run as "pricewatch run" on a cron schedule until
interrupted. Each run opens its own browser session and overwrites the
report. A run that is still in progress when the next one is due causes
that tick to be skipped.

The schedule has six fields, starting with seconds.

Examples:
  # Every six hours (default)
  pricewatch watch

  # Every day at 09:30, and once right now
  pricewatch watch --schedule "0 30 9 * * *" --now`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}

	addRunFlags(cmd)
	cmd.Flags().String("schedule", config.DefaultSchedule, "Cron schedule with a leading seconds field")
	cmd.Flags().Bool("now", false, "Also run once immediately")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Schedule, err = cmd.Flags().GetString("schedule")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	runNow, err := cmd.Flags().GetBool("now")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	r := newRunner(cmd.OutOrStdout(), logger)
	scheduler, err := schedule.New(cfg.Schedule, func(ctx context.Context) {
		if err := runPrices(ctx, cfg, r); err != nil {
			logger.Error("run failed", "error", err)
		}
	}, schedule.WithRunNow(runNow), schedule.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return scheduler.Run(ctx)
}
