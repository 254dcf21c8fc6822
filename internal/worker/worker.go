package worker

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/parsers"
)

// Locator is the part of artifacts.Locator the worker needs.
type Locator interface {
	Locate(kind artifacts.Kind) []string
}

// Worker collects every artifact family into one app.Collection.
type Worker struct {
	locator          Locator
	parser           *parsers.Parser
	benchmarkVariant string
	logger           *zap.Logger
}

func NewWorker(locator Locator, parser *parsers.Parser, benchmarkVariant string, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		locator:          locator,
		parser:           parser,
		benchmarkVariant: benchmarkVariant,
		logger:           logger,
	}
}

// family is the output slot of one artifact family. Each goroutine owns
// exactly one slot, so no locking is needed before Wait returns.
type family struct {
	tests       []app.TestRecord
	benchmarks  []app.BenchmarkRecord
	coverage    app.CoverageSummary
	memory      []app.MemoryIssue
	diagnostics []app.Diagnostic
}

// Collect parses all artifact families concurrently and joins them. Bad
// artifacts only produce diagnostics; the only error is ctx cancellation.
func (w *Worker) Collect(ctx context.Context) (*app.Collection, error) {
	var events, platform, benches, coverage, memory family

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.collectEvents(ctx, artifacts.KindEventLog, w.parser.Events, &events) })
	g.Go(func() error { return w.collectEvents(ctx, artifacts.KindPlatform, w.parser.Platform, &platform) })
	g.Go(func() error { return w.collectBenchmarks(ctx, &benches) })
	g.Go(func() error { return w.collectCoverage(&coverage) })
	g.Go(func() error { return w.collectMemory(ctx, &memory) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &app.Collection{Coverage: coverage.coverage}
	for _, f := range []*family{&events, &platform, &benches, &coverage, &memory} {
		c.Tests = append(c.Tests, f.tests...)
		c.Benchmarks = append(c.Benchmarks, f.benchmarks...)
		c.Memory = append(c.Memory, f.memory...)
		c.Diagnostics = append(c.Diagnostics, f.diagnostics...)
	}

	for _, d := range c.Diagnostics {
		w.logger.Warn("Skipped unusable artifact data",
			zap.String("path", d.Path),
			zap.Int("line", d.Line),
			zap.String("reason", d.Message))
	}
	w.logger.Info("Collected test artifacts",
		zap.Int("tests", len(c.Tests)),
		zap.Int("benchmarks", len(c.Benchmarks)),
		zap.Bool("coverage", c.Coverage.Measured),
		zap.Int("memory_issues", len(c.Memory)),
		zap.Int("diagnostics", len(c.Diagnostics)))
	return c, nil
}

func (w *Worker) locate(kind artifacts.Kind) []string {
	paths := w.locator.Locate(kind)
	if len(paths) == 0 {
		w.logger.Debug("No artifacts found", zap.String("kind", string(kind)))
	}
	return paths
}

func (w *Worker) collectEvents(ctx context.Context, kind artifacts.Kind, parse func(string) parsers.Result[app.TestRecord], out *family) error {
	for _, path := range w.locate(kind) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := parse(path)
		w.logger.Debug("Parsed event log", zap.String("path", path), zap.Int("tests", len(res.Records)))
		out.tests = append(out.tests, res.Records...)
		out.diagnostics = append(out.diagnostics, res.Diagnostics...)
	}
	return nil
}

func (w *Worker) collectBenchmarks(ctx context.Context, out *family) error {
	for _, dir := range w.locate(artifacts.KindBenchmark) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := w.parser.Benchmark(dir, w.benchmarkVariant)
		if len(res.Records) == 0 && len(res.Diagnostics) == 0 {
			w.logger.Debug("Benchmark has no estimates", zap.String("dir", dir))
		}
		out.benchmarks = append(out.benchmarks, res.Records...)
		out.diagnostics = append(out.diagnostics, res.Diagnostics...)
	}
	return nil
}

func (w *Worker) collectCoverage(out *family) error {
	res := w.parser.Coverage(w.locate(artifacts.KindCoverage))
	if len(res.Records) > 0 {
		out.coverage = res.Records[0]
	}
	out.diagnostics = append(out.diagnostics, res.Diagnostics...)
	return nil
}

func (w *Worker) collectMemory(ctx context.Context, out *family) error {
	for _, path := range w.locate(artifacts.KindMemory) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := w.parser.Memory(path)
		out.memory = append(out.memory, res.Records...)
		out.diagnostics = append(out.diagnostics, res.Diagnostics...)
	}
	return nil
}
