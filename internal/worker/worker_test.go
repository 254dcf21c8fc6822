package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/parsers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWorker(root string) *Worker {
	reports := filepath.Join(root, "tests", "reports")
	benches := filepath.Join(root, "target", "criterion")
	return NewWorker(artifacts.NewLocator(reports, benches), parsers.New(parsers.DefaultLimits), parsers.VariantBase, zap.NewNop())
}

func TestCollect_NoArtifacts(t *testing.T) {
	c, err := newWorker(t.TempDir()).Collect(context.Background())
	require.NoError(t, err)

	assert.Empty(t, c.Tests)
	assert.Empty(t, c.Benchmarks)
	assert.Empty(t, c.Memory)
	assert.Empty(t, c.Diagnostics)
	assert.False(t, c.Coverage.Measured)
}

func TestCollect_AllFamilies(t *testing.T) {
	root := t.TempDir()
	reports := filepath.Join(root, "tests", "reports")
	writeFile(t, filepath.Join(reports, "unit_tests_1.json"),
		`{"type":"test","name":"unit_add_clip","event":"ok"}`+"\n"+`{"type":"test","name":"integration_export","event":"failed"}`)
	writeFile(t, filepath.Join(reports, "platform", "platform_macos.json"), `{"type":"test","name":"macos_metal","event":"ok"}`)
	writeFile(t, filepath.Join(reports, "coverage", "tarpaulin-report.json"), `{"coverage":71.5}`)
	writeFile(t, filepath.Join(reports, "memory", "valgrind_a.xml"), `<valgrindoutput><error><kind>Leak</kind><what>lost</what></error></valgrindoutput>`)
	writeFile(t, filepath.Join(root, "target", "criterion", "frame_alloc", "base", "estimates.json"), `{"mean":{"point_estimate":120.5}}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "criterion", "no_estimates"), 0o755))

	c, err := newWorker(root).Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, c.Tests, 3)
	var platform int
	for _, tr := range c.Tests {
		if tr.Category == app.CategoryPlatform {
			platform++
		}
	}
	assert.Equal(t, 1, platform)
	require.Len(t, c.Benchmarks, 1)
	assert.Equal(t, 120.5, c.Benchmarks[0].MeanNs)
	assert.True(t, c.Coverage.Measured)
	assert.Equal(t, 71.5, c.Coverage.LineCoveragePct)
	require.Len(t, c.Memory, 1)
	assert.Empty(t, c.Diagnostics)
}

func TestCollect_MalformedFileIsIsolated(t *testing.T) {
	root := t.TempDir()
	reports := filepath.Join(root, "tests", "reports")
	writeFile(t, filepath.Join(reports, "unit_tests_1.json"), `{"type":"test","name":"unit_a","event":"ok"}`)
	writeFile(t, filepath.Join(reports, "memory", "valgrind_bad.xml"), `<valgrindoutput><error>`)
	writeFile(t, filepath.Join(reports, "coverage", "tarpaulin-report.json"), `not json`)

	c, err := newWorker(root).Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, c.Tests, 1)
	assert.Empty(t, c.Memory)
	assert.False(t, c.Coverage.Measured)
	assert.Len(t, c.Diagnostics, 2)
}

func TestCollect_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tests", "reports", "unit_tests_1.json"), `{"type":"test","name":"unit_a","event":"ok"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newWorker(root).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
