package database

import (
	"context"
	"slices"
	"sync"

	"github.com/testkube/testreport/internal/app"
)

// MockDatabase keeps runs in memory. InsertErr and TrendErr, when set, are
// returned by the matching calls.
type MockDatabase struct {
	mu   sync.Mutex
	runs []RunRecord

	InsertErr error
	TrendErr  error
}

func NewMockDatabase(runs ...RunRecord) *MockDatabase {
	return &MockDatabase{runs: slices.Clone(runs)}
}

func (db *MockDatabase) InsertRun(_ context.Context, run RunRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.InsertErr != nil {
		return db.InsertErr
	}
	db.runs = append(db.runs, run)
	return nil
}

func (db *MockDatabase) GetPassRateTrend(_ context.Context, limit int) ([]app.DataPoint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.TrendErr != nil {
		return nil, db.TrendErr
	}

	runs := slices.Clone(db.runs)
	slices.SortStableFunc(runs, func(a, b RunRecord) int {
		return a.GeneratedAt.Compare(b.GeneratedAt)
	})
	if limit < len(runs) {
		runs = runs[len(runs)-max(limit, 0):]
	}

	points := make([]app.DataPoint, 0, len(runs))
	for _, r := range runs {
		points = append(points, r.DataPoint())
	}
	return points, nil
}

// Runs returns the inserted runs in insertion order.
func (db *MockDatabase) Runs() []RunRecord {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.runs)
}

func (db *MockDatabase) Close() error { return nil }
