package parsers

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/testkube/testreport/internal/app"
)

// Criterion estimate variants. "base" is the saved baseline, "new" the most
// recent run.
const (
	VariantBase = "base"
	VariantNew  = "new"
)

// criterionDirs are criterion's own bookkeeping directories, never benchmarks.
var criterionDirs = map[string]bool{
	VariantBase: true,
	VariantNew:  true,
	"change":    true,
	"report":    true,
}

type estimate struct {
	PointEstimate float64 `json:"point_estimate"`
}

type estimates struct {
	Mean   *estimate `json:"mean"`
	Median *estimate `json:"median"`
	StdDev *estimate `json:"std_dev"`
}

// Benchmark reads the estimates for the benchmark in dir. Exactly one
// estimates file is read: the preferred variant if it exists, otherwise the
// other one. A directory with neither yields no record.
//
// Benchmark groups (dir/<bench>/<variant>/estimates.json) are read one level
// deep and named "group/bench".
func (p *Parser) Benchmark(dir, preferred string) Result[app.BenchmarkRecord] {
	var res Result[app.BenchmarkRecord]
	name := filepath.Base(dir)

	if path, variant, ok := estimatesFile(dir, preferred); ok {
		if rec, ok := p.readEstimates(&res, path, name, variant); ok {
			res.Records = append(res.Records, rec)
		}
		return res
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return res
	}
	for _, e := range entries {
		if !e.IsDir() || criterionDirs[e.Name()] {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		path, variant, ok := estimatesFile(sub, preferred)
		if !ok {
			continue
		}
		if rec, ok := p.readEstimates(&res, path, name+"/"+e.Name(), variant); ok {
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

func estimatesFile(dir, preferred string) (string, string, bool) {
	order := []string{VariantBase, VariantNew}
	if preferred == VariantNew {
		order = []string{VariantNew, VariantBase}
	}
	for _, variant := range order {
		path := filepath.Join(dir, variant, "estimates.json")
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, variant, true
		}
	}
	return "", "", false
}

func (p *Parser) readEstimates(res *Result[app.BenchmarkRecord], path, name, variant string) (app.BenchmarkRecord, bool) {
	data, err := p.readAll(path)
	if err != nil {
		res.diag(path, 0, "cannot read estimates: %v", err)
		return app.BenchmarkRecord{}, false
	}
	var est estimates
	if err := json.Unmarshal(data, &est); err != nil {
		res.diag(path, 0, "malformed estimates: %v", err)
		return app.BenchmarkRecord{}, false
	}
	return app.BenchmarkRecord{
		Name:     name,
		MeanNs:   point(est.Mean),
		MedianNs: point(est.Median),
		StdDevNs: point(est.StdDev),
		Variant:  variant,
	}, true
}

func point(e *estimate) float64 {
	if e == nil || e.PointEstimate < 0 {
		return 0
	}
	return e.PointEstimate
}

