// Package database keeps a per-run history of report summaries so the
// interactive report can plot a pass-rate trend.
package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/testkube/testreport/internal/app"
)

// RunRecord is the persisted summary of one generated report.
type RunRecord struct {
	ID           string
	GeneratedAt  time.Time
	Title        string
	Total        int
	Passed       int
	Failed       int
	Ignored      int
	Unknown      int
	PassRate     float64
	LineCoverage float64
	Benchmarks   int
	MemoryIssues int
}

// NewRunRecord snapshots the model's summary under a fresh run ID.
func NewRunRecord(m *app.ReportModel) RunRecord {
	s := m.Summary
	return RunRecord{
		ID:           uuid.NewString(),
		GeneratedAt:  m.Timestamp,
		Title:        m.Title,
		Total:        s.Total,
		Passed:       s.Passed,
		Failed:       s.Failed,
		Ignored:      s.Ignored,
		Unknown:      s.Unknown,
		PassRate:     s.PassRate,
		LineCoverage: s.Coverage.LineCoveragePct,
		Benchmarks:   s.Benchmarks,
		MemoryIssues: s.MemoryIssues,
	}
}

// DataPoint converts the record into a trend point.
func (r RunRecord) DataPoint() app.DataPoint {
	return app.DataPoint{
		Date:         r.GeneratedAt,
		PassRate:     r.PassRate,
		Total:        r.Total,
		LineCoverage: r.LineCoverage,
	}
}

type Database interface {
	InsertRun(ctx context.Context, run RunRecord) error
	// GetPassRateTrend returns up to limit of the most recent runs, oldest first.
	GetPassRateTrend(ctx context.Context, limit int) ([]app.DataPoint, error)
	Close() error
}
