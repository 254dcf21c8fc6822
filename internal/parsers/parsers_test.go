package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testkube/testreport/internal/app"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEvents_Scenario(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"), strings.Join([]string{
		`{"type":"suite","event":"started","test_count":2}`,
		`{"type":"test","name":"unit_add_clip","event":"ok","exec_time":0.012}`,
		`{"type":"test","name":"integration_export","event":"failed","stdout":"thread panicked"}`,
		`{"type":"suite","event":"failed","passed":1,"failed":1}`,
	}, "\n"))

	res := New(DefaultLimits).Events(path)

	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Records, 2)

	unit := res.Records[0]
	assert.Equal(t, "unit_add_clip", unit.Name)
	assert.Equal(t, app.OutcomePassed, unit.Outcome)
	assert.Equal(t, app.CategoryUnit, unit.Category)
	require.NotNil(t, unit.Duration)
	assert.InDelta(t, 0.012, *unit.Duration, 1e-9)

	integ := res.Records[1]
	assert.Equal(t, app.OutcomeFailed, integ.Outcome)
	assert.Equal(t, app.CategoryIntegration, integ.Category)
	assert.Nil(t, integ.Duration)
	assert.Equal(t, "thread panicked", integ.Stdout)
	assert.Equal(t, path, integ.Source)
}

func TestEvents_UnrecognizedStatusIsUnknown(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"),
		`{"type":"test","name":"unit_timeout","event":"timeout"}`+"\n")

	res := New(DefaultLimits).Events(path)

	require.Len(t, res.Records, 1)
	assert.Equal(t, app.OutcomeUnknown, res.Records[0].Outcome)
}

func TestEvents_StartedIsItsOwnRecord(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"), strings.Join([]string{
		`{"type":"test","event":"started","name":"unit_a"}`,
		`{"type":"test","event":"ok","name":"unit_a"}`,
		`{"type":"test","event":"started","name":"unit_crashed"}`,
	}, "\n"))

	res := New(DefaultLimits).Events(path)

	require.Len(t, res.Records, 3)
	assert.Equal(t, "unit_a", res.Records[0].Name)
	assert.Equal(t, app.OutcomeUnknown, res.Records[0].Outcome)
	assert.Equal(t, "unit_a", res.Records[1].Name)
	assert.Equal(t, app.OutcomePassed, res.Records[1].Outcome)
	assert.Equal(t, "unit_crashed", res.Records[2].Name)
	assert.Equal(t, app.OutcomeUnknown, res.Records[2].Outcome)
	assert.Empty(t, res.Diagnostics)
}

func TestEvents_MalformedLinesAreSkipped(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"), strings.Join([]string{
		`{"type":"test","name":"unit_a","event":"ok"}`,
		`{not json`,
		``,
		`{"type":"test","name":"unit_b","event":"ignored","exec_time":"n/a"}`,
	}, "\n"))

	res := New(DefaultLimits).Events(path)

	require.Len(t, res.Records, 2)
	assert.Equal(t, app.OutcomeIgnored, res.Records[1].Outcome)
	assert.Nil(t, res.Records[1].Duration)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 2, res.Diagnostics[0].Line)
}

func TestEvents_MissingNameDefaults(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"), `{"type":"test","event":"ok"}`)

	res := New(DefaultLimits).Events(path)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Unknown", res.Records[0].Name)
}

func TestEvents_LineCap(t *testing.T) {
	long := `{"type":"test","name":"unit_` + strings.Repeat("x", 200) + `","event":"ok"}`
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"),
		`{"type":"test","name":"unit_a","event":"ok"}`+"\n"+long+"\n"+`{"type":"test","name":"unit_c","event":"ok"}`)

	res := New(Limits{MaxLineLength: 100}).Events(path)

	require.Len(t, res.Records, 1)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "exceeds")
}

func TestEvents_FileCap(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"), `{"type":"test","name":"unit_a","event":"ok"}`)

	res := New(Limits{MaxFileSize: 10}).Events(path)

	assert.Empty(t, res.Records)
	require.Len(t, res.Diagnostics, 1)
}

func TestEvents_MissingFile(t *testing.T) {
	res := New(DefaultLimits).Events(filepath.Join(t.TempDir(), "gone.json"))
	assert.Empty(t, res.Records)
	assert.Len(t, res.Diagnostics, 1)
}

func TestEvents_Idempotent(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "unit_tests_1.json"), strings.Join([]string{
		`{"type":"test","event":"started","name":"unit_a"}`,
		`{"type":"test","name":"unit_a","event":"ok","exec_time":1.5}`,
		`{"type":"test","name":"integration_b","event":"failed"}`,
		`garbage`,
	}, "\n"))
	p := New(DefaultLimits)

	first := p.Events(path)
	second := p.Events(path)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second parse differs (-first +second):\n%s", diff)
	}
}

func TestPlatform_AlwaysPlatformCategory(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "platform", "platform_linux.json"), strings.Join([]string{
		`{"type":"test","name":"unit_like_linux_probe","event":"ok"}`,
		`{"type":"test","name":"wasm_boot","event":"failed"}`,
	}, "\n"))

	res := New(DefaultLimits).Platform(path)

	require.Len(t, res.Records, 2)
	for _, r := range res.Records {
		assert.Equal(t, app.CategoryPlatform, r.Category)
	}
}
