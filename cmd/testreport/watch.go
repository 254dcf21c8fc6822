package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Generate reports, then regenerate whenever artifacts change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	generate := func(ctx context.Context) error {
		err := generateOnce(ctx, cmd, cfg)
		if errors.Is(err, artifacts.ErrAllWritesFailed) {
			// Keep watching; the next change may succeed.
			logger.Error("No report could be written", zap.Error(err))
			return nil
		}
		return err
	}
	if err := generate(ctx); err != nil {
		return err
	}

	dirs := func() []string { return watch.Dirs(cfg.ReportsPath(), cfg.BenchmarksPath()) }
	return watch.New(dirs, watch.DefaultDebounce, generate, logger).Run(ctx)
}
