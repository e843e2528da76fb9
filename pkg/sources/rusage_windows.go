//go:build windows

package sources

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

func init() {
	defaultRegistry.Register("processtimes", cpuusage.ScopeProcess, 20, func() (cpuusage.Source, error) {
		return NewProcessTimes(), nil
	})
}

// ProcessTimes reads the current process's kernel + user time via
// GetProcessTimes. FILETIME values count 100ns intervals.
type ProcessTimes struct{}

// NewProcessTimes creates a GetProcessTimes-backed process source.
func NewProcessTimes() *ProcessTimes {
	return &ProcessTimes{}
}

func (p *ProcessTimes) Name() string          { return "processtimes" }
func (p *ProcessTimes) Scope() cpuusage.Scope { return cpuusage.ScopeProcess }

func (p *ProcessTimes) times() (creation, kernel, user windows.Filetime, err error) {
	var exit windows.Filetime
	// the pseudo-handle from CurrentProcess needs no CloseHandle
	err = windows.GetProcessTimes(windows.CurrentProcess(), &creation, &exit, &kernel, &user)
	if err != nil {
		err = errors.Wrap(err, "GetProcessTimes")
	}
	return creation, kernel, user, err
}

// Read returns busy time in 100ns ticks.
func (p *ProcessTimes) Read() (cpuusage.Reading, error) {
	_, kernel, user, err := p.times()
	if err != nil {
		return cpuusage.Reading{}, err
	}
	return cpuusage.Reading{
		Busy:           filetimeTicks(kernel) + filetimeTicks(user),
		TicksPerSecond: 1e7,
	}, nil
}

// Uptime returns the time since process creation.
func (p *ProcessTimes) Uptime() (time.Duration, error) {
	creation, _, _, err := p.times()
	if err != nil {
		return 0, err
	}
	return time.Since(time.Unix(0, creation.Nanoseconds())), nil
}

func filetimeTicks(ft windows.Filetime) uint64 {
	return uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime)
}
