package app

import (
	"slices"
	"time"
)

// Collection is everything the parsers produced for one run, before
// aggregation. Tests are already categorized.
type Collection struct {
	Tests       []TestRecord
	Benchmarks  []BenchmarkRecord
	Coverage    CoverageSummary
	Memory      []MemoryIssue
	Diagnostics []Diagnostic
}

// AggregateOptions carries the values that do not come from artifacts.
type AggregateOptions struct {
	Timestamp time.Time
	Title     string
	Trend     []DataPoint
}

// Aggregate builds the immutable ReportModel. The returned model shares no
// slices with c.
func Aggregate(c *Collection, opts AggregateOptions) *ReportModel {
	if c == nil {
		c = &Collection{}
	}

	tests := make(map[Category][]TestRecord, len(Categories))
	for _, cat := range Categories {
		tests[cat] = []TestRecord{}
	}
	for _, t := range c.Tests {
		tests[t.Category] = append(tests[t.Category], t)
	}

	m := &ReportModel{
		Timestamp:   opts.Timestamp,
		Title:       opts.Title,
		Tests:       tests,
		Benchmarks:  nonNil(slices.Clone(c.Benchmarks)),
		Coverage:    c.Coverage,
		Memory:      nonNil(slices.Clone(c.Memory)),
		Diagnostics: nonNil(slices.Clone(c.Diagnostics)),
		Trend:       nonNil(slices.Clone(opts.Trend)),
	}
	m.Summary = Summarize(m)
	return m
}

// Summarize computes the derived numbers for a model.
//
// Total counts Unit, Integration and Platform records; Performance tests are
// benchmark-like and stay out of the denominator. Passed and Failed are
// counted over Unit and Integration only.
func Summarize(m *ReportModel) Summary {
	s := Summary{
		Total: len(m.Tests[CategoryUnit]) +
			len(m.Tests[CategoryIntegration]) +
			len(m.Tests[CategoryPlatform]),
		Coverage:     m.Coverage,
		Benchmarks:   len(m.Benchmarks),
		MemoryIssues: len(m.Memory),
		MemoryStatus: MemoryClean,
	}

	for _, cat := range []Category{CategoryUnit, CategoryIntegration} {
		for _, t := range m.Tests[cat] {
			switch t.Outcome {
			case OutcomePassed:
				s.Passed++
			case OutcomeFailed:
				s.Failed++
			case OutcomeIgnored:
				s.Ignored++
			default:
				s.Unknown++
			}
		}
	}

	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	s.PassRate = ClampPct(s.PassRate)

	if s.MemoryIssues > 0 {
		s.MemoryStatus = MemoryIssuesPresent
	}
	return s
}

// ClampPct bounds a percentage to [0,100].
func ClampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
