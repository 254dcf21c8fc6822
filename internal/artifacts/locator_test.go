package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestLocate_MissingDirectories(t *testing.T) {
	root := t.TempDir()
	l := NewLocator(filepath.Join(root, "tests", "reports"), filepath.Join(root, "target", "criterion"))

	for _, kind := range []Kind{KindEventLog, KindBenchmark, KindCoverage, KindMemory, KindPlatform} {
		got := l.Locate(kind)
		assert.NotNil(t, got, "kind %s", kind)
		assert.Empty(t, got, "kind %s", kind)
	}
}

func TestLocate_Patterns(t *testing.T) {
	root := t.TempDir()
	reports := filepath.Join(root, "tests", "reports")
	benches := filepath.Join(root, "target", "criterion")

	touch(t, filepath.Join(reports, "unit_tests_20240101.json"))
	touch(t, filepath.Join(reports, "integration_tests_20240101.json"))
	touch(t, filepath.Join(reports, "test_report_20240101_000000.json"))
	touch(t, filepath.Join(reports, "coverage", "tarpaulin-report.json"))
	touch(t, filepath.Join(reports, "memory", "valgrind_decoder.xml"))
	touch(t, filepath.Join(reports, "memory", "notes.txt"))
	touch(t, filepath.Join(reports, "platform", "platform_linux.json"))
	touch(t, filepath.Join(benches, "frame_alloc", "base", "estimates.json"))
	require.NoError(t, os.MkdirAll(filepath.Join(benches, "buffer_pool"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(benches, "report"), 0o755))
	touch(t, filepath.Join(benches, "stray.json"))

	l := NewLocator(reports, benches)

	assert.Equal(t, []string{
		filepath.Join(reports, "integration_tests_20240101.json"),
		filepath.Join(reports, "unit_tests_20240101.json"),
	}, l.Locate(KindEventLog))
	assert.Equal(t, []string{filepath.Join(reports, "coverage", "tarpaulin-report.json")}, l.Locate(KindCoverage))
	assert.Equal(t, []string{filepath.Join(reports, "memory", "valgrind_decoder.xml")}, l.Locate(KindMemory))
	assert.Equal(t, []string{filepath.Join(reports, "platform", "platform_linux.json")}, l.Locate(KindPlatform))
	assert.Equal(t, []string{
		filepath.Join(benches, "buffer_pool"),
		filepath.Join(benches, "frame_alloc"),
	}, l.Locate(KindBenchmark))
}

func TestLocate_UnknownKind(t *testing.T) {
	l := NewLocator(t.TempDir(), t.TempDir())
	assert.Empty(t, l.Locate(Kind("screenshots")))
}
