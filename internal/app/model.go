package app

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the observed result of a single test.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeIgnored Outcome = "ignored"
	OutcomeUnknown Outcome = "unknown"
)

// ParseOutcome maps a cargo test event status onto an Outcome.
// Anything unrecognized is Unknown so the record still counts as observed.
func ParseOutcome(status string) Outcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok":
		return OutcomePassed
	case "failed":
		return OutcomeFailed
	case "ignored":
		return OutcomeIgnored
	default:
		return OutcomeUnknown
	}
}

// Category is the bucket a test record is reported under.
type Category string

const (
	CategoryUnit        Category = "unit"
	CategoryIntegration Category = "integration"
	CategoryPerformance Category = "performance"
	CategoryPlatform    Category = "platform"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryUnit, CategoryIntegration, CategoryPerformance, CategoryPlatform}

// Title is the human readable category name.
func (c Category) Title() string {
	switch c {
	case CategoryUnit:
		return "Unit Tests"
	case CategoryIntegration:
		return "Integration Tests"
	case CategoryPerformance:
		return "Performance Tests"
	case CategoryPlatform:
		return "Platform Tests"
	}
	return string(c)
}

// TestRecord is one observed test outcome.
type TestRecord struct {
	Name     string   `json:"name"`
	Outcome  Outcome  `json:"outcome"`
	Duration *float64 `json:"duration_seconds"` // nil when the event carried no exec_time
	Category Category `json:"category"`
	Stdout   string   `json:"stdout,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// BenchmarkRecord is one criterion measurement, in nanoseconds.
type BenchmarkRecord struct {
	Name     string  `json:"name"`
	MeanNs   float64 `json:"mean_ns"`
	MedianNs float64 `json:"median_ns"`
	StdDevNs float64 `json:"std_dev_ns"`
	Variant  string  `json:"variant"`
}

// CoverageSummary holds process-wide coverage percentages.
// Measured is false when no coverage artifact existed and the zeros are defaults.
type CoverageSummary struct {
	LineCoveragePct     float64 `json:"line"`
	BranchCoveragePct   float64 `json:"branch"`
	FunctionCoveragePct float64 `json:"function"`
	Measured            bool    `json:"measured"`
}

// MemoryIssue is one <error> entry from a memory-analysis report.
type MemoryIssue struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

// Diagnostic describes an artifact, or a line of one, that could not be used.
type Diagnostic struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", d.Path, d.Line, d.Message)
	}
	return d.Path + ": " + d.Message
}

// Memory safety statuses.
const (
	MemoryClean         = "clean"
	MemoryIssuesPresent = "issues present"
)

// Summary holds every derived number the renderers display.
// Renderers read it and never recompute it.
type Summary struct {
	Total        int             `json:"total"`
	Passed       int             `json:"passed"`
	Failed       int             `json:"failed"`
	Ignored      int             `json:"ignored"`
	Unknown      int             `json:"unknown"`
	PassRate     float64         `json:"pass_rate"`
	Coverage     CoverageSummary `json:"coverage"`
	Benchmarks   int             `json:"benchmarks"`
	MemoryIssues int             `json:"memory_issues"`
	MemoryStatus string          `json:"memory_status"`
}

// DataPoint is one historical run on the pass-rate trend.
type DataPoint struct {
	Date         time.Time `json:"date"`
	PassRate     float64   `json:"pass_rate"`
	Total        int       `json:"total"`
	LineCoverage float64   `json:"line_coverage"`
}

// ReportModel is the aggregate every renderer consumes. It is not modified
// after Aggregate returns it.
type ReportModel struct {
	Timestamp   time.Time
	Title       string
	Tests       map[Category][]TestRecord
	Benchmarks  []BenchmarkRecord
	Coverage    CoverageSummary
	Memory      []MemoryIssue
	Diagnostics []Diagnostic
	Trend       []DataPoint
	Summary     Summary
}

// TestsIn returns the records of one category, never nil.
func (m *ReportModel) TestsIn(c Category) []TestRecord {
	if recs := m.Tests[c]; recs != nil {
		return recs
	}
	return []TestRecord{}
}
