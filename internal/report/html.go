package report

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/charts"
)

//go:embed templates/report.html
var templatesFS embed.FS

var reportTemplate = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"duration":    formatDuration,
	"ns":          formatNs,
	"pct":         formatPct,
	"status":      statusLabel,
	"statusClass": statusClass,
}).ParseFS(templatesFS, "templates/report.html"))

// HTMLRenderer produces the interactive report: summary cards, category tabs
// and go-echarts charts.
type HTMLRenderer struct {
	charts *charts.Generator
}

func NewHTMLRenderer(gen *charts.Generator) *HTMLRenderer {
	if gen == nil {
		gen = charts.NewGenerator()
	}
	return &HTMLRenderer{charts: gen}
}

func (r *HTMLRenderer) Format() Format { return FormatHTML }

type htmlTab struct {
	ID     string
	Title  string
	Tests  []app.TestRecord
	Active bool
}

type htmlPage struct {
	Title        string
	Generated    string
	Summary      app.Summary
	Tabs         []htmlTab
	EmptyMessage string
	Benchmarks   []app.BenchmarkRecord
	Platforms    []platformRow
	Memory       []app.MemoryIssue
	MemoryClean  bool
	Diagnostics  []app.Diagnostic
	AssetsHost   string

	OutcomeChart   *charts.Snippet
	BenchmarkChart *charts.Snippet
	TrendChart     *charts.Snippet
}

func (r *HTMLRenderer) Render(m *app.ReportModel) ([]byte, error) {
	page := htmlPage{
		Title:        m.Title,
		Generated:    m.Timestamp.Format(timestampLayout),
		Summary:      m.Summary,
		EmptyMessage: emptyCategory,
		Benchmarks:   m.Benchmarks,
		Platforms:    platformStatus(m),
		Memory:       m.Memory,
		MemoryClean:  m.Summary.MemoryStatus == app.MemoryClean,
		Diagnostics:  m.Diagnostics,
		AssetsHost:   charts.AssetsHost,
	}

	for _, cat := range app.Categories {
		page.Tabs = append(page.Tabs, htmlTab{
			ID:     string(cat) + "-tests",
			Title:  cat.Title(),
			Tests:  m.TestsIn(cat),
			Active: cat == app.CategoryUnit,
		})
	}

	if m.Summary.Total > 0 {
		c := r.charts.OutcomeChart(m.Summary)
		page.OutcomeChart = &c
	}
	if len(m.Benchmarks) > 0 {
		c := r.charts.BenchmarkChart(m.Benchmarks)
		page.BenchmarkChart = &c
	}
	if len(m.Trend) > 0 {
		c := r.charts.PassRateChart(trendWithCurrent(m))
		page.TrendChart = &c
	}

	var buf bytes.Buffer
	if err := reportTemplate.ExecuteTemplate(&buf, "report.html", page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// trendWithCurrent appends this run to the stored history, which only holds
// previous runs.
func trendWithCurrent(m *app.ReportModel) []app.DataPoint {
	points := make([]app.DataPoint, 0, len(m.Trend)+1)
	points = append(points, m.Trend...)
	return append(points, app.DataPoint{
		Date:         m.Timestamp,
		PassRate:     m.Summary.PassRate,
		Total:        m.Summary.Total,
		LineCoverage: m.Summary.Coverage.LineCoveragePct,
	})
}
