// Package report renders a ReportModel into its three output formats.
//
// Every renderer reads the numbers in ReportModel.Summary and never derives
// its own, which keeps the formats in agreement.
package report

import (
	"fmt"
	"strings"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/artifacts"
)

// Format identifies a rendered artifact; it doubles as the file extension.
type Format string

const (
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// Renderer turns a model into one self-contained document. Implementations
// hold no state between calls.
type Renderer interface {
	Format() Format
	Render(m *app.ReportModel) ([]byte, error)
}

// RenderAll runs every renderer independently. A renderer that fails, or
// panics, yields an Output carrying the error; the rest still render.
func RenderAll(m *app.ReportModel, renderers ...Renderer) []artifacts.Output {
	outputs := make([]artifacts.Output, len(renderers))
	for i, r := range renderers {
		outputs[i] = renderOne(m, r)
	}
	return outputs
}

func renderOne(m *app.ReportModel, r Renderer) (out artifacts.Output) {
	out.Ext = string(r.Format())
	defer func() {
		if p := recover(); p != nil {
			out.Data = nil
			out.Err = fmt.Errorf("%s renderer panicked: %v", r.Format(), p)
		}
	}()
	out.Data, out.Err = r.Render(m)
	return out
}

const (
	timestampLayout = "2006-01-02 15:04:05"
	emptyCategory   = "No tests found in this category."
)

func formatDuration(d *float64) string {
	if d == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3fs", *d)
}

func formatNs(v float64) string {
	return fmt.Sprintf("%.2f ns", v)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func statusLabel(o app.Outcome) string {
	return strings.ToUpper(string(o))
}

// statusClass maps an outcome onto the badge CSS class.
func statusClass(o app.Outcome) string {
	switch o {
	case app.OutcomePassed:
		return "passed"
	case app.OutcomeFailed:
		return "failed"
	}
	return "skipped"
}

// platformStatus lists the platform probe results in report order.
func platformStatus(m *app.ReportModel) []platformRow {
	var rows []platformRow
	for _, t := range m.TestsIn(app.CategoryPlatform) {
		rows = append(rows, platformRow{Name: t.Name, Outcome: t.Outcome})
	}
	return rows
}

type platformRow struct {
	Name    string
	Outcome app.Outcome
}
