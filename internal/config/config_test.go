package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, DefaultReportsDir, cfg.ReportsDir)
	assert.Equal(t, "base", cfg.BenchmarkVariant)
	assert.Equal(t, DefaultNarrativeRows, cfg.NarrativeRows)
	assert.Equal(t, filepath.Join(root, "tests", "reports"), cfg.ReportsPath())
	assert.Equal(t, filepath.Join(root, "target", "criterion"), cfg.BenchmarksPath())
	assert.Empty(t, cfg.History.Driver)
}

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	yml := `
reports_dir: out/reports
benchmark_variant: new
narrative_rows: 5
history:
  driver: sqlite
publish:
  gcs_bucket: ci-reports
  prefix: nightly
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(yml), 0o644))

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "out/reports", cfg.ReportsDir)
	assert.Equal(t, "new", cfg.BenchmarkVariant)
	assert.Equal(t, 5, cfg.NarrativeRows)
	assert.Equal(t, "ci-reports", cfg.Publish.GCSBucket)
	assert.Equal(t, filepath.Join(root, "out", "reports", "history.db"), cfg.HistoryDSN())
	assert.Equal(t, DefaultTrendRuns, cfg.History.TrendRuns)
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("TESTREPORT_REPORTS_DIR", "/abs/reports")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/reports")

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "/abs/reports", cfg.ReportsPath())
	assert.Equal(t, "postgres", cfg.History.Driver)
	assert.Equal(t, "postgres://localhost/reports", cfg.HistoryDSN())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("benchmark_variant: latest\n"), 0o644))

	_, err := Load(root, "")
	assert.ErrorContains(t, err, "benchmark_variant")
}

func TestLoad_Malformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("reports_dir: [unclosed\n"), 0o644))

	_, err := Load(root, "")
	assert.Error(t, err)
}
