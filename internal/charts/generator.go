package charts

import (
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"

	"github.com/testkube/testreport/internal/app"
)

// AssetsHost serves echarts.min.js for the embedded snippets.
const AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Snippet is a chart ready to embed in an html/template page.
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// OutcomeChart is a pie of the summary's outcome counts.
func (g *Generator) OutcomeChart(s app.Summary) Snippet {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Test Outcomes"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Height:     "300px",
			Width:      "100%",
			AssetsHost: AssetsHost,
		}),
	)

	other := s.Total - s.Passed - s.Failed
	pie.AddSeries("Outcomes", []opts.PieData{
		{Name: "Passed", Value: s.Passed, ItemStyle: &opts.ItemStyle{Color: "#27ae60"}},
		{Name: "Failed", Value: s.Failed, ItemStyle: &opts.ItemStyle{Color: "#e74c3c"}},
		{Name: "Other", Value: other, ItemStyle: &opts.ItemStyle{Color: "#f39c12"}},
	}).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)

	return g.snippet(pie)
}

// BenchmarkChart compares mean and median per benchmark.
func (g *Generator) BenchmarkChart(benches []app.BenchmarkRecord) Snippet {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Benchmark Estimates (ns)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Height:     "300px",
			Width:      "100%",
			AssetsHost: AssetsHost,
		}),
	)

	xAxis := make([]string, len(benches))
	meanData := make([]opts.BarData, len(benches))
	medianData := make([]opts.BarData, len(benches))

	for i, b := range benches {
		xAxis[i] = b.Name
		meanData[i] = opts.BarData{Value: b.MeanNs}
		medianData[i] = opts.BarData{Value: b.MedianNs}
	}

	bar.SetXAxis(xAxis).
		AddSeries("Mean", meanData).
		AddSeries("Median", medianData)

	return g.snippet(bar)
}

// PassRateChart plots the pass rate of previous runs plus the current one.
func (g *Generator) PassRateChart(data []app.DataPoint) Snippet {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Pass Rate Trend"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
		charts.WithInitializationOpts(opts.Initialization{
			Height:     "200px",
			Width:      "100%",
			AssetsHost: AssetsHost,
		}),
	)

	xAxis := make([]string, len(data))
	yAxis := make([]opts.LineData, len(data))

	for i, dp := range data {
		xAxis[i] = dp.Date.Format("Jan 02 15:04")
		yAxis[i] = opts.LineData{Value: dp.PassRate}
	}

	line.SetXAxis(xAxis).
		AddSeries("Pass Rate %", yAxis).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	return g.snippet(line)
}

// snippetRenderer is anything that can render itself as an embeddable snippet.
type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

func (g *Generator) snippet(c snippetRenderer) Snippet {
	s := c.RenderSnippet()
	return Snippet{
		Element: template.HTML(s.Element),
		Script:  template.HTML(s.Script),
	}
}
