package sources

import (
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// gopsutil reports float seconds; they are carried as microsecond ticks.
const microTicks = 1e6

func init() {
	defaultRegistry.Register("gopsutil", cpuusage.ScopeProcess, 10, func() (cpuusage.Source, error) {
		return NewProcess()
	})
	defaultRegistry.Register("gopsutil", cpuusage.ScopeSystem, 10, func() (cpuusage.Source, error) {
		return NewHost(), nil
	})
}

func secondsToTicks(sec float64) uint64 {
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 0
	}
	return uint64(math.Round(sec * microTicks))
}

// Process reads the current process's CPU times through gopsutil.
type Process struct {
	proc *process.Process
}

// NewProcess creates a gopsutil process source for the current process.
func NewProcess() (*Process, error) {
	pid := os.Getpid()
	if pid < 0 || pid > math.MaxInt32 {
		return nil, errors.Errorf("invalid PID: %d", pid)
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open process %d", pid)
	}
	return &Process{proc: proc}, nil
}

func (p *Process) Name() string          { return "gopsutil" }
func (p *Process) Scope() cpuusage.Scope { return cpuusage.ScopeProcess }

// Read returns user + system time in microseconds.
func (p *Process) Read() (cpuusage.Reading, error) {
	t, err := p.proc.Times()
	if err != nil {
		return cpuusage.Reading{}, errors.Wrap(err, "cannot read process cpu times")
	}
	return cpuusage.Reading{
		Busy:           secondsToTicks(t.User + t.System),
		TicksPerSecond: microTicks,
	}, nil
}

// Uptime returns the time since the process was created.
func (p *Process) Uptime() (time.Duration, error) {
	return processAge(p.proc)
}

func processAge(proc *process.Process) (time.Duration, error) {
	ms, err := proc.CreateTime()
	if err != nil {
		return 0, errors.Wrap(err, "cannot read process create time")
	}
	return time.Since(time.UnixMilli(ms)), nil
}

// selfAge returns the age of the current process.
func selfAge() (time.Duration, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, errors.Wrap(err, "cannot open current process")
	}
	return processAge(proc)
}

// hostUptime returns the time since boot.
func hostUptime() (time.Duration, error) {
	sec, err := host.Uptime()
	if err != nil {
		return 0, errors.Wrap(err, "cannot read host uptime")
	}
	return time.Duration(sec) * time.Second, nil
}

// Host reads system-wide busy time through gopsutil. Busy time counts the
// same states as /proc/stat: user, nice, system, irq, softirq and steal.
type Host struct{}

// NewHost creates a gopsutil system source.
func NewHost() *Host {
	return &Host{}
}

func (h *Host) Name() string          { return "gopsutil" }
func (h *Host) Scope() cpuusage.Scope { return cpuusage.ScopeSystem }

// Read returns busy time in microseconds.
func (h *Host) Read() (cpuusage.Reading, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return cpuusage.Reading{}, errors.Wrap(err, "cannot read cpu times")
	}
	if len(times) == 0 {
		return cpuusage.Reading{}, errors.New("cpu times returned no rows")
	}
	t := times[0]
	return cpuusage.Reading{
		Busy:           secondsToTicks(t.User + t.Nice + t.System + t.Irq + t.Softirq + t.Steal),
		TicksPerSecond: microTicks,
	}, nil
}

// Uptime returns the host uptime.
func (h *Host) Uptime() (time.Duration, error) {
	return hostUptime()
}
