//go:build linux

package sources

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

func init() {
	defaultRegistry.Register("procstat", cpuusage.ScopeSystem, 20, func() (cpuusage.Source, error) {
		return NewProcStat(""), nil
	})
}

const procStatPath = "/proc/stat"

// CPUStats holds the aggregate "cpu" line of /proc/stat, in clock ticks.
type CPUStats struct {
	User    uint64
	Nice    uint64
	System  uint64
	Idle    uint64
	IOWait  uint64
	IRQ     uint64
	SoftIRQ uint64
	Steal   uint64
}

// Busy returns the busy CPU time (non-idle).
func (s CPUStats) Busy() uint64 {
	return s.User + s.Nice + s.System + s.IRQ + s.SoftIRQ + s.Steal
}

// ProcStat reads system-wide busy time summed over all cores from /proc/stat.
type ProcStat struct {
	path  string
	ticks uint64
}

// NewProcStat creates a /proc/stat source. An empty path means /proc/stat.
func NewProcStat(path string) *ProcStat {
	if path == "" {
		path = procStatPath
	}
	return &ProcStat{
		path:  path,
		ticks: clockTicks(),
	}
}

func (p *ProcStat) Name() string          { return "procstat" }
func (p *ProcStat) Scope() cpuusage.Scope { return cpuusage.ScopeSystem }

// Read returns busy time in clock ticks.
func (p *ProcStat) Read() (cpuusage.Reading, error) {
	stats, err := readCPUStats(p.path)
	if err != nil {
		return cpuusage.Reading{}, err
	}
	return cpuusage.Reading{
		Busy:           stats.Busy(),
		TicksPerSecond: p.ticks,
	}, nil
}

// Uptime returns the time since boot.
func (p *ProcStat) Uptime() (time.Duration, error) {
	return hostUptime()
}

// readCPUStats parses the aggregate cpu line.
func readCPUStats(path string) (CPUStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return CPUStats{}, errors.Wrapf(err, "cannot open %s", path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 8 {
			return CPUStats{}, errors.Errorf("unexpected %s format: %d fields", path, len(fields))
		}

		values := make([]uint64, 8)
		for i := 1; i < len(fields) && i <= 8; i++ {
			v, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return CPUStats{}, errors.Wrapf(err, "cannot parse field %d of %s", i, path)
			}
			values[i-1] = v
		}
		return CPUStats{
			User:    values[0],
			Nice:    values[1],
			System:  values[2],
			Idle:    values[3],
			IOWait:  values[4],
			IRQ:     values[5],
			SoftIRQ: values[6],
			Steal:   values[7],
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return CPUStats{}, errors.Wrapf(err, "cannot read %s", path)
	}

	return CPUStats{}, errors.Errorf("cpu line not found in %s", path)
}
