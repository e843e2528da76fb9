//go:build linux

package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

const statFixture = `cpu  4705 356 584 3699176 23060 0 277 0 0 0
cpu0 1393 280 234 852599 12061 0 232 0 0 0
cpu1 3312 76 350 2846577 10999 0 45 0 0 0
intr 114930548 113199788 3 0 5 263 0 4 [... lots more numbers ...]
ctxt 1990473
btime 1062191376
`

func writeStat(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCPUStats(t *testing.T) {
	stats, err := readCPUStats(writeStat(t, statFixture))
	require.NoError(t, err)

	assert.Equal(t, CPUStats{
		User: 4705, Nice: 356, System: 584, Idle: 3699176,
		IOWait: 23060, IRQ: 0, SoftIRQ: 277, Steal: 0,
	}, stats)
	assert.Equal(t, uint64(4705+356+584+277), stats.Busy())
}

func TestProcStat_Uptime(t *testing.T) {
	up, err := NewProcStat("").Uptime()
	require.NoError(t, err)
	assert.Greater(t, up, time.Duration(0))
}

func TestReadCPUStats_Errors(t *testing.T) {
	_, err := readCPUStats(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = readCPUStats(writeStat(t, "cpu  1 2 3\n"))
	assert.ErrorContains(t, err, "unexpected")

	_, err = readCPUStats(writeStat(t, "cpu  1 2 x 4 5 6 7 8\n"))
	assert.ErrorContains(t, err, "cannot parse field 3")

	_, err = readCPUStats(writeStat(t, "intr 1 2 3\n"))
	assert.ErrorContains(t, err, "cpu line not found")
}

func TestProcStat_ReadsBusyTicks(t *testing.T) {
	p := NewProcStat(writeStat(t, statFixture))
	assert.Equal(t, "procstat", p.Name())
	assert.Equal(t, cpuusage.ScopeSystem, p.Scope())

	r, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(5922), r.Busy)
	assert.Positive(t, r.TicksPerSecond)
}

func TestProcStat_Live(t *testing.T) {
	r, err := NewProcStat("").Read()
	require.NoError(t, err)
	assert.Positive(t, r.Busy)
}

func TestClockTicks(t *testing.T) {
	tck := clockTicks()
	assert.Positive(t, tck)
	assert.LessOrEqual(t, tck, uint64(10000))
}
