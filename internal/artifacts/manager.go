package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrAllWritesFailed is returned when not a single report could be written.
var ErrAllWritesFailed = errors.New("all report writes failed")

// ReportPrefix starts every generated report file name.
const ReportPrefix = "test_report_"

// Output is one rendered report waiting to be written.
type Output struct {
	Ext  string // "html", "json", "md"
	Data []byte
	Err  error // render failure; the file is not written
}

// WriteResult reports what happened to one Output.
type WriteResult struct {
	Ext  string
	Path string
	Err  error
}

// Manager owns the reports directory.
type Manager struct {
	reportsDir string
}

func NewManager(reportsDir string) *Manager {
	return &Manager{reportsDir: reportsDir}
}

func (m *Manager) Dir() string {
	return m.reportsDir
}

// ReportPath is the output path for a report generated at ts.
func (m *Manager) ReportPath(ts time.Time, ext string) string {
	return filepath.Join(m.reportsDir, fmt.Sprintf("%s%s.%s", ReportPrefix, ts.Format("20060102_150405"), ext))
}

// WriteReports writes every output concurrently, each to its own path. A
// failure on one output never stops the others. The returned error is
// ErrAllWritesFailed (joined with the causes) only when every output failed.
func (m *Manager) WriteReports(ts time.Time, outputs []Output) ([]WriteResult, error) {
	results := make([]WriteResult, len(outputs))

	if err := os.MkdirAll(m.reportsDir, 0755); err != nil {
		for i, o := range outputs {
			results[i] = WriteResult{Ext: o.Ext, Err: fmt.Errorf("failed to create reports dir: %w", err)}
		}
		return results, errors.Join(ErrAllWritesFailed, err)
	}

	var wg sync.WaitGroup
	for i, o := range outputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := m.ReportPath(ts, o.Ext)
			results[i] = WriteResult{Ext: o.Ext, Path: path, Err: m.write(path, o)}
		}()
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Ext, r.Err))
		}
	}
	if len(outputs) > 0 && len(errs) == len(outputs) {
		return results, errors.Join(append([]error{ErrAllWritesFailed}, errs...)...)
	}
	return results, nil
}

func (m *Manager) write(path string, o Output) error {
	if o.Err != nil {
		return fmt.Errorf("render failed: %w", o.Err)
	}
	// Write to a temp file and rename so readers never see a partial report.
	tmp, err := os.CreateTemp(m.reportsDir, ".tmp-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(o.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}

// Latest returns the newest report with the given extension, or "" if none.
// Report names embed a sortable timestamp, so the lexically greatest wins.
func (m *Manager) Latest(ext string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(m.reportsDir, ReportPrefix+"*."+ext))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil // No reports yet
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// ResolveReport maps a request path onto a file inside the reports
// directory, rejecting anything that escapes it.
func (m *Manager) ResolveReport(name string) (string, error) {
	fpath := filepath.Join(m.reportsDir, filepath.FromSlash(name))

	// Path traversal protection
	if !strings.HasPrefix(fpath, filepath.Clean(m.reportsDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return fpath, nil
}
