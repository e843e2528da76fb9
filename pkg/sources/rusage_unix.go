//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package sources

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

func init() {
	defaultRegistry.Register("rusage", cpuusage.ScopeProcess, 20, func() (cpuusage.Source, error) {
		return NewRusage(), nil
	})
}

// Rusage reads the current process's user + system time via getrusage(2).
// RUSAGE_SELF accounts for every thread, including ones that have exited.
type Rusage struct{}

// NewRusage creates a getrusage-backed process source.
func NewRusage() *Rusage {
	return &Rusage{}
}

func (r *Rusage) Name() string          { return "rusage" }
func (r *Rusage) Scope() cpuusage.Scope { return cpuusage.ScopeProcess }

// Read returns busy time in nanoseconds.
func (r *Rusage) Read() (cpuusage.Reading, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return cpuusage.Reading{}, errors.Wrap(err, "getrusage")
	}
	busy := ru.Utime.Nano() + ru.Stime.Nano()
	if busy < 0 {
		return cpuusage.Reading{}, errors.Errorf("getrusage returned negative cpu time %d", busy)
	}
	return cpuusage.Reading{
		Busy:           uint64(busy),
		TicksPerSecond: 1e9,
	}, nil
}

// Uptime returns the age of the current process.
func (r *Rusage) Uptime() (time.Duration, error) {
	return selfAge()
}
