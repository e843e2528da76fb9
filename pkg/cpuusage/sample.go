// Package cpuusage computes CPU utilization from cumulative busy-time counters.
//
// A Sampler reads a Source (process or system busy time, in ticks) together
// with a monotonic clock, and turns the delta between two consecutive
// readings into a percentage:
//
//	percent = 100 × (ΔBusy / TicksPerSecond) / ΔWall
//
// Unnormalized values range over [0, 100 × cores]; normalized values over
// [0, 100].
package cpuusage

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Scope identifies what a busy-time counter accounts for.
type Scope string

const (
	// ScopeProcess covers all threads of the current process.
	ScopeProcess Scope = "process"
	// ScopeSystem covers all cores of the host.
	ScopeSystem Scope = "system"
)

// ParseScope parses a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeProcess:
		return ScopeProcess, nil
	case ScopeSystem:
		return ScopeSystem, nil
	}
	return "", errors.Errorf("unknown scope %q (want process or system)", s)
}

// Reading is a raw counter value reported by a Source.
type Reading struct {
	Busy           uint64
	TicksPerSecond uint64
}

// Source reports cumulative busy time (user + system) for a fixed scope.
type Source interface {
	// Name identifies the source, e.g. "rusage" or "procstat".
	Name() string
	Scope() Scope
	Read() (Reading, error)
}

// UptimeSource is a Source that knows how long its scope has been
// accumulating busy time (process age or host uptime).
type UptimeSource interface {
	Source
	Uptime() (time.Duration, error)
}

// Sample is a single point-in-time observation.
type Sample struct {
	Timestamp      time.Duration `json:"timestamp"`
	Busy           uint64        `json:"busy"`
	TicksPerSecond uint64        `json:"ticks_per_second"`
	Scope          Scope         `json:"scope"`
}

// BusySeconds returns the cumulative busy time in seconds.
func (s Sample) BusySeconds() float64 {
	if s.TicksPerSecond == 0 {
		return 0
	}
	return float64(s.Busy) / float64(s.TicksPerSecond)
}

// Clock returns a monotonic timestamp relative to a fixed origin.
type Clock func() time.Duration

// MonotonicClock returns a Clock backed by the runtime's monotonic time.
func MonotonicClock() Clock {
	origin := time.Now()
	return func() time.Duration {
		return time.Since(origin)
	}
}

// Baseline selects what the first measurement is computed against.
type Baseline string

const (
	// BaselineZero makes the first measurement return 0.
	BaselineZero Baseline = "zero"
	// BaselineUptime computes the first measurement against the scope's
	// start (process creation or boot) when the source can report it.
	BaselineUptime Baseline = "uptime"
)

// ParseBaseline parses a baseline policy name.
func ParseBaseline(s string) (Baseline, error) {
	switch Baseline(strings.ToLower(strings.TrimSpace(s))) {
	case BaselineZero, "":
		return BaselineZero, nil
	case BaselineUptime:
		return BaselineUptime, nil
	}
	return "", errors.Errorf("unknown baseline %q (want zero or uptime)", s)
}
