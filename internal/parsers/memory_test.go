package parsers

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const valgrindTwoErrors = `<?xml version="1.0"?>
<valgrindoutput>
  <protocolversion>4</protocolversion>
  <error>
    <unique>0x0</unique>
    <tid>1</tid>
    <kind>Leak_DefinitelyLost</kind>
    <xwhat>
      <text>64 bytes in 1 blocks are definitely lost in loss record 1 of 1</text>
      <leakedbytes>64</leakedbytes>
    </xwhat>
  </error>
  <error>
    <unique>0x1</unique>
    <what>Invalid read of size 4</what>
  </error>
</valgrindoutput>
`

func TestMemory_Scenario(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "valgrind_decoder.xml"), valgrindTwoErrors)

	res := New(DefaultLimits).Memory(path)

	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Leak_DefinitelyLost", res.Records[0].Kind)
	assert.Equal(t, "64 bytes in 1 blocks are definitely lost in loss record 1 of 1", res.Records[0].Description)
	assert.Equal(t, "Unknown", res.Records[1].Kind)
	assert.Equal(t, "Invalid read of size 4", res.Records[1].Description)
}

func TestMemory_MissingDescription(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "valgrind_x.xml"),
		`<valgrindoutput><error><kind>InvalidFree</kind></error></valgrindoutput>`)

	res := New(DefaultLimits).Memory(path)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Unknown issue", res.Records[0].Description)
}

func TestMemory_NoErrors(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "valgrind_clean.xml"),
		`<valgrindoutput><status><state>FINISHED</state></status></valgrindoutput>`)

	res := New(DefaultLimits).Memory(path)

	assert.Empty(t, res.Records)
	assert.Empty(t, res.Diagnostics)
}

func TestMemory_Unparsable(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "valgrind_cut.xml"),
		`<valgrindoutput><error><kind>Leak</kind></error><error><kind>`)

	res := New(DefaultLimits).Memory(path)

	assert.Empty(t, res.Records)
	assert.Len(t, res.Diagnostics, 1)
}

func TestMemory_Idempotent(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "valgrind_decoder.xml"), valgrindTwoErrors)
	p := New(DefaultLimits)

	if diff := cmp.Diff(p.Memory(path), p.Memory(path)); diff != "" {
		t.Errorf("second parse differs (-first +second):\n%s", diff)
	}
}
