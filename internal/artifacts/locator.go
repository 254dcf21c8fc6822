package artifacts

import (
	"os"
	"path/filepath"
	"sort"
)

// Kind is an artifact family.
type Kind string

const (
	KindEventLog  Kind = "events"
	KindBenchmark Kind = "benchmarks"
	KindCoverage  Kind = "coverage"
	KindMemory    Kind = "memory"
	KindPlatform  Kind = "platform"
)

// criterionReportDir is criterion's own HTML output, not a benchmark.
const criterionReportDir = "report"

// Locator finds artifact files under a reports directory and a benchmarks
// root. It only reads the filesystem.
type Locator struct {
	reportsDir    string
	benchmarksDir string
}

func NewLocator(reportsDir, benchmarksDir string) *Locator {
	return &Locator{
		reportsDir:    reportsDir,
		benchmarksDir: benchmarksDir,
	}
}

// Locate returns the sorted paths for one artifact kind. It returns an empty
// slice when nothing matches or a directory does not exist.
func (l *Locator) Locate(kind Kind) []string {
	switch kind {
	case KindEventLog:
		return l.glob(filepath.Join(l.reportsDir, "*_tests_*.json"))
	case KindCoverage:
		return l.glob(filepath.Join(l.reportsDir, "coverage", "tarpaulin-report.json"))
	case KindMemory:
		return l.glob(filepath.Join(l.reportsDir, "memory", "valgrind_*.xml"))
	case KindPlatform:
		return l.glob(filepath.Join(l.reportsDir, "platform", "platform_*.json"))
	case KindBenchmark:
		return l.benchmarkDirs()
	}
	return []string{}
}

func (l *Locator) glob(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return []string{}
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func (l *Locator) benchmarkDirs() []string {
	entries, err := os.ReadDir(l.benchmarksDir)
	if err != nil {
		return []string{}
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || e.Name() == criterionReportDir {
			continue
		}
		dirs = append(dirs, filepath.Join(l.benchmarksDir, e.Name()))
	}
	sort.Strings(dirs)
	return dirs
}
