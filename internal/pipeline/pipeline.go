// Package pipeline runs one report generation: locate, parse, aggregate,
// render, write, then the optional publish and history steps.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/charts"
	"github.com/testkube/testreport/internal/config"
	"github.com/testkube/testreport/internal/database"
	"github.com/testkube/testreport/internal/parsers"
	"github.com/testkube/testreport/internal/publish"
	"github.com/testkube/testreport/internal/report"
	"github.com/testkube/testreport/internal/worker"
)

// Pipeline holds the collaborators of a run. History and Publisher are
// optional.
type Pipeline struct {
	cfg       *config.Config
	logger    *zap.Logger
	history   database.Database
	publisher *publish.Publisher
	now       func() time.Time
}

type Option func(*Pipeline)

func WithHistory(db database.Database) Option {
	return func(p *Pipeline) { p.history = db }
}

func WithPublisher(pub *publish.Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is what a run produced.
type Result struct {
	Model  *app.ReportModel
	Writes []artifacts.WriteResult
}

// Run generates the reports. Missing or malformed artifacts never fail a
// run; the only errors are cancellation and every write failing
// (artifacts.ErrAllWritesFailed).
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	trend := p.loadTrend(ctx)

	locator := artifacts.NewLocator(p.cfg.ReportsPath(), p.cfg.BenchmarksPath())
	parser := parsers.New(parsers.Limits{MaxFileSize: p.cfg.MaxFileSize, MaxLineLength: p.cfg.MaxLineLength})
	collection, err := worker.NewWorker(locator, parser, p.cfg.BenchmarkVariant, p.logger).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect artifacts: %w", err)
	}

	model := app.Aggregate(collection, app.AggregateOptions{
		Timestamp: p.now(),
		Title:     p.cfg.Title,
		Trend:     trend,
	})

	outputs := report.RenderAll(model,
		report.NewHTMLRenderer(charts.NewGenerator()),
		report.NewJSONRenderer(),
		report.NewMarkdownRenderer(p.cfg.NarrativeRows),
	)

	writes, err := artifacts.NewManager(p.cfg.ReportsPath()).WriteReports(model.Timestamp, outputs)
	for _, w := range writes {
		if w.Err != nil {
			p.logger.Error("Failed to write report", zap.String("format", w.Ext), zap.Error(w.Err))
			continue
		}
		p.logger.Info("Report written", zap.String("format", w.Ext), zap.String("path", w.Path))
	}
	result := &Result{Model: model, Writes: writes}
	if err != nil {
		return result, err
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, writes); err != nil {
			p.logger.Warn("Publishing reports failed", zap.Error(err))
		}
	}
	if p.history != nil {
		if err := p.history.InsertRun(ctx, database.NewRunRecord(model)); err != nil {
			p.logger.Warn("Failed to record run history", zap.Error(err))
		}
	}

	return result, nil
}

func (p *Pipeline) loadTrend(ctx context.Context) []app.DataPoint {
	if p.history == nil {
		return nil
	}
	trend, err := p.history.GetPassRateTrend(ctx, p.cfg.History.TrendRuns)
	if err != nil {
		p.logger.Warn("Failed to load run history", zap.Error(err))
		return nil
	}
	return trend
}
