package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/testkube/testreport/internal/config"
	"github.com/testkube/testreport/internal/console"
	"github.com/testkube/testreport/internal/database"
	"github.com/testkube/testreport/internal/pipeline"
	"github.com/testkube/testreport/internal/publish"
)

var (
	// Global flags
	verbose    bool
	rootDir    string
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "testreport",
	Short: "Aggregate test, benchmark, coverage and memory results into reports",
	Long: `testreport collects cargo test event logs, criterion benchmark estimates,
tarpaulin coverage and valgrind memory reports from the project tree and
renders them as HTML, JSON and Markdown reports in the reports directory.

Missing or malformed artifacts never fail a run. The command exits non-zero
only when none of the three reports could be written.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := zap.NewProductionConfig()
		if verbose {
			logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = logCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <root>/"+config.FileName+")")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		root = wd
	}
	return config.Load(root, configPath)
}

// openHistory returns nil when no history driver is configured. A store that
// cannot be opened is logged and skipped.
func openHistory(ctx context.Context, cfg *config.Config) database.Database {
	if cfg.History.Driver == "" {
		return nil
	}
	db, err := database.Open(ctx, cfg.History.Driver, cfg.HistoryDSN(), logger)
	if err != nil {
		logger.Warn("History store unavailable", zap.String("driver", cfg.History.Driver), zap.Error(err))
		return nil
	}
	return db
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	err = generateOnce(ctx, cmd, cfg)
	if errors.Is(err, context.Canceled) {
		return errors.New("interrupted")
	}
	return err
}

// generateOnce runs the pipeline with whatever history and publishing the
// config enables, then prints the console summary.
func generateOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	var opts []pipeline.Option
	if db := openHistory(ctx, cfg); db != nil {
		defer db.Close()
		opts = append(opts, pipeline.WithHistory(db))
	}

	if cfg.Publish.GCSBucket != "" {
		uploader, err := publish.NewGCSUploader(ctx, publish.GCSOptions{
			Bucket:          cfg.Publish.GCSBucket,
			CredentialsFile: cfg.Publish.CredentialsFile,
			Endpoint:        cfg.Publish.Endpoint,
		})
		if err != nil {
			logger.Warn("Report publishing disabled", zap.Error(err))
		} else {
			defer uploader.Close()
			opts = append(opts, pipeline.WithPublisher(publish.NewPublisher(uploader, cfg.Publish.Prefix, logger)))
		}
	}

	res, runErr := pipeline.New(cfg, logger, opts...).Run(ctx)
	if res != nil {
		theme := console.DefaultTheme()
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			theme = console.MonoTheme()
		}
		if err := console.PrintSummary(cmd.OutOrStdout(), theme, res.Model, res.Writes); err != nil {
			logger.Warn("Failed to print summary", zap.Error(err))
		}
	}
	return runErr
}
