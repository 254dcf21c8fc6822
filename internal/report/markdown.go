package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/testkube/testreport/internal/app"
)

// MarkdownRenderer produces the narrative report. Long tables are cut to
// maxRows with an explicit "... and K more" line.
type MarkdownRenderer struct {
	maxRows int
}

func NewMarkdownRenderer(maxRows int) *MarkdownRenderer {
	if maxRows <= 0 {
		maxRows = 10
	}
	return &MarkdownRenderer{maxRows: maxRows}
}

func (r *MarkdownRenderer) Format() Format { return FormatMarkdown }

func (r *MarkdownRenderer) Render(m *app.ReportModel) ([]byte, error) {
	var b bytes.Buffer
	s := m.Summary

	fmt.Fprintf(&b, "# %s\n\n", m.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", m.Timestamp.Format(timestampLayout))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Tests**: %d\n", s.Total)
	fmt.Fprintf(&b, "- **Passed**: %d (%s)\n", s.Passed, formatPct(s.PassRate))
	fmt.Fprintf(&b, "- **Failed**: %d\n", s.Failed)
	if s.Ignored > 0 || s.Unknown > 0 {
		fmt.Fprintf(&b, "- **Ignored**: %d, **Unknown**: %d\n", s.Ignored, s.Unknown)
	}
	fmt.Fprintf(&b, "- **Code Coverage**: %s%s\n", formatPct(s.Coverage.LineCoveragePct), notMeasured(s.Coverage))
	fmt.Fprintf(&b, "- **Performance Benchmarks**: %d\n", s.Benchmarks)
	fmt.Fprintf(&b, "- **Memory Issues**: %d\n", s.MemoryIssues)

	b.WriteString("\n## Test Results\n")
	for _, cat := range app.Categories {
		r.writeTests(&b, cat, m.TestsIn(cat))
	}

	r.writeBenchmarks(&b, m.Benchmarks)

	b.WriteString("\n## Code Coverage\n\n")
	if !s.Coverage.Measured {
		b.WriteString("_No coverage report was found; the values below are defaults, not measurements._\n\n")
	}
	fmt.Fprintf(&b, "- Line: %s\n", formatPct(s.Coverage.LineCoveragePct))
	fmt.Fprintf(&b, "- Branch: %s\n", formatPct(s.Coverage.BranchCoveragePct))
	fmt.Fprintf(&b, "- Function: %s\n", formatPct(s.Coverage.FunctionCoveragePct))

	b.WriteString("\n## Platform Compatibility\n\n")
	if rows := platformStatus(m); len(rows) == 0 {
		b.WriteString("No platform probes were run.\n")
	} else {
		for _, p := range rows {
			fmt.Fprintf(&b, "- %s %s (%s)\n", platformMark(p.Outcome), escapeCell(p.Name), statusLabel(p.Outcome))
		}
	}

	b.WriteString("\n## Memory Safety\n\n")
	if s.MemoryStatus == app.MemoryClean {
		b.WriteString("✅ No memory leaks or issues detected!\n")
	} else {
		fmt.Fprintf(&b, "⚠️ Memory issues detected: %d\n\n", s.MemoryIssues)
		for _, issue := range m.Memory {
			fmt.Fprintf(&b, "- **%s**: %s\n", escapeCell(issue.Kind), escapeCell(issue.Description))
		}
	}

	if len(m.Diagnostics) > 0 {
		b.WriteString("\n## Collection Warnings\n\n")
		for _, d := range m.Diagnostics {
			fmt.Fprintf(&b, "- `%s`\n", d.String())
		}
	}

	return b.Bytes(), nil
}

func (r *MarkdownRenderer) writeTests(b *bytes.Buffer, cat app.Category, tests []app.TestRecord) {
	fmt.Fprintf(b, "\n### %s (%d)\n\n", cat.Title(), len(tests))
	if len(tests) == 0 {
		b.WriteString(emptyCategory + "\n")
		return
	}
	b.WriteString("| Test Name | Status | Duration |\n")
	b.WriteString("|-----------|--------|----------|\n")
	for _, t := range tests[:min(len(tests), r.maxRows)] {
		fmt.Fprintf(b, "| %s | %s | %s |\n", escapeCell(t.Name), statusLabel(t.Outcome), formatDuration(t.Duration))
	}
	if more := len(tests) - r.maxRows; more > 0 {
		fmt.Fprintf(b, "\n*... and %d more tests*\n", more)
	}
}

func (r *MarkdownRenderer) writeBenchmarks(b *bytes.Buffer, benches []app.BenchmarkRecord) {
	b.WriteString("\n## Performance Benchmarks\n\n")
	if len(benches) == 0 {
		b.WriteString("No performance benchmarks were run.\n")
		return
	}
	b.WriteString("| Benchmark | Mean | Median | Std Dev |\n")
	b.WriteString("|-----------|------|--------|---------|\n")
	for _, bench := range benches[:min(len(benches), r.maxRows)] {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			escapeCell(bench.Name), formatNs(bench.MeanNs), formatNs(bench.MedianNs), formatNs(bench.StdDevNs))
	}
	if more := len(benches) - r.maxRows; more > 0 {
		fmt.Fprintf(b, "\n*... and %d more benchmarks*\n", more)
	}
}

func notMeasured(c app.CoverageSummary) string {
	if c.Measured {
		return ""
	}
	return " (not measured)"
}

func platformMark(o app.Outcome) string {
	if o == app.OutcomePassed {
		return "✅"
	}
	return "❌"
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// escapeCell keeps s on one Markdown table row or list line.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
