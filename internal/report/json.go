package report

import (
	"encoding/json"
	"time"

	"github.com/testkube/testreport/internal/app"
)

// JSONRenderer produces the machine-readable report. It is lossless with
// respect to the model: no collection is truncated.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Format() Format { return FormatJSON }

// Document is the JSON report schema.
type Document struct {
	Timestamp   time.Time             `json:"timestamp"`
	Title       string                `json:"title"`
	Summary     app.Summary           `json:"summary"`
	Tests       Tests                 `json:"tests"`
	Benchmarks  []app.BenchmarkRecord `json:"benchmarks"`
	Memory      []app.MemoryIssue     `json:"memory"`
	Diagnostics []app.Diagnostic      `json:"diagnostics"`
	Trend       []app.DataPoint       `json:"trend"`
}

// Tests holds one array per category; empty categories are [] rather than
// missing so consumers can tell "none ran" from "not reported".
type Tests struct {
	Unit        []app.TestRecord `json:"unit"`
	Integration []app.TestRecord `json:"integration"`
	Performance []app.TestRecord `json:"performance"`
	Platform    []app.TestRecord `json:"platform"`
}

func (r *JSONRenderer) Render(m *app.ReportModel) ([]byte, error) {
	doc := Document{
		Timestamp: m.Timestamp,
		Title:     m.Title,
		Summary:   m.Summary,
		Tests: Tests{
			Unit:        m.TestsIn(app.CategoryUnit),
			Integration: m.TestsIn(app.CategoryIntegration),
			Performance: m.TestsIn(app.CategoryPerformance),
			Platform:    m.TestsIn(app.CategoryPlatform),
		},
		Benchmarks:  orEmpty(m.Benchmarks),
		Memory:      orEmpty(m.Memory),
		Diagnostics: orEmpty(m.Diagnostics),
		Trend:       orEmpty(m.Trend),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
