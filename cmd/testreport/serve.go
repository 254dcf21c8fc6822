package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated reports and the run history over HTTP",
	Long: `Serves the reports directory. GET / redirects to the newest HTML report,
/reports/<file> serves report files, /api/v1/summary returns the newest JSON
report and /api/v1/trend the pass-rate history when a history store is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := openHistory(ctx, cfg)
	if db != nil {
		defer db.Close()
	}
	srv := server.NewServer(artifacts.NewManager(cfg.ReportsPath()), db, cfg.History.TrendRuns, logger)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Serving reports", zap.String("addr", addr), zap.String("dir", cfg.ReportsPath()))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
