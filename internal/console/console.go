// Package console prints the end-of-run summary to the terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/artifacts"
)

// Theme holds the styles and icons the summary uses.
type Theme struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Box     lipgloss.Style
	Pass    string
	Fail    string
}

func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("242")).
			Padding(0, 1),
		Pass: "✓",
		Fail: "✗",
	}
}

// MonoTheme renders without colors or borders, for pipes and CI logs.
func MonoTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Box:     lipgloss.NewStyle(),
		Pass:    "+",
		Fail:    "x",
	}
}

// PrintSummary writes the run's headline numbers and the files produced.
func PrintSummary(w io.Writer, theme Theme, m *app.ReportModel, results []artifacts.WriteResult) error {
	s := m.Summary
	var lines []string

	lines = append(lines, theme.Title.Render(m.Title))
	lines = append(lines, fmt.Sprintf("Total: %d  %s  %s  Pass rate: %.1f%%",
		s.Total,
		theme.Success.Render(fmt.Sprintf("Passed: %d", s.Passed)),
		failedStyle(theme, s.Failed).Render(fmt.Sprintf("Failed: %d", s.Failed)),
		s.PassRate))

	coverage := fmt.Sprintf("Coverage: %.1f%%", s.Coverage.LineCoveragePct)
	if !s.Coverage.Measured {
		coverage += theme.Muted.Render(" (not measured)")
	}
	lines = append(lines, coverage)
	lines = append(lines, fmt.Sprintf("Benchmarks: %d  Memory issues: %d", s.Benchmarks, s.MemoryIssues))

	if n := len(m.Diagnostics); n > 0 {
		lines = append(lines, theme.Warning.Render(fmt.Sprintf("%d artifact(s) could not be used", n)))
	}

	lines = append(lines, "")
	for _, r := range results {
		if r.Err != nil {
			lines = append(lines, theme.Error.Render(fmt.Sprintf("%s %s: %v", theme.Fail, r.Ext, r.Err)))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", theme.Success.Render(theme.Pass), r.Path))
	}

	_, err := fmt.Fprintln(w, theme.Box.Render(strings.Join(lines, "\n")))
	return err
}

func failedStyle(theme Theme, failed int) lipgloss.Style {
	if failed > 0 {
		return theme.Error
	}
	return theme.Muted
}
