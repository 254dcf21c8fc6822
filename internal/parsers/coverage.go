package parsers

import (
	"encoding/json"

	"github.com/testkube/testreport/internal/app"
)

// tarpaulinReport is the subset of cargo-tarpaulin's JSON report we use.
type tarpaulinReport struct {
	Coverage         *float64 `json:"coverage"`
	BranchCoverage   *float64 `json:"branch_coverage"`
	FunctionCoverage *float64 `json:"function_coverage"`
	Files            []struct {
		Covered   int `json:"covered"`
		Coverable int `json:"coverable"`
	} `json:"files"`
}

// Coverage reads the first coverage summary in paths. With no path, or an
// unreadable one, all percentages stay at 0 and Measured is false.
func (p *Parser) Coverage(paths []string) Result[app.CoverageSummary] {
	var res Result[app.CoverageSummary]
	summary := app.CoverageSummary{}
	if len(paths) == 0 {
		res.Records = []app.CoverageSummary{summary}
		return res
	}

	path := paths[0]
	for _, extra := range paths[1:] {
		res.diag(extra, 0, "ignored, only one coverage summary is read")
	}

	data, err := p.readAll(path)
	if err != nil {
		res.diag(path, 0, "cannot read coverage report: %v", err)
		res.Records = []app.CoverageSummary{summary}
		return res
	}
	var rep tarpaulinReport
	if err := json.Unmarshal(data, &rep); err != nil {
		res.diag(path, 0, "malformed coverage report: %v", err)
		res.Records = []app.CoverageSummary{summary}
		return res
	}

	summary.Measured = true
	if rep.Coverage != nil {
		summary.LineCoveragePct = app.ClampPct(*rep.Coverage)
	} else {
		var covered, coverable int
		for _, f := range rep.Files {
			covered += f.Covered
			coverable += f.Coverable
		}
		if coverable > 0 {
			summary.LineCoveragePct = app.ClampPct(float64(covered) / float64(coverable) * 100)
		}
	}
	if rep.BranchCoverage != nil {
		summary.BranchCoveragePct = app.ClampPct(*rep.BranchCoverage)
	}
	if rep.FunctionCoverage != nil {
		summary.FunctionCoveragePct = app.ClampPct(*rep.FunctionCoverage)
	}
	res.Records = []app.CoverageSummary{summary}
	return res
}
