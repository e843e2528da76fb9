// Package sysinfo exposes process-wide system metrics without explicit setup.
package sysinfo

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
	"github.com/danpilch/cpuusage/pkg/sources"
)

var (
	mu      sync.Mutex
	sampler *cpuusage.Sampler
)

// CPUUsage returns the current process's CPU utilization in percent since
// the previous call. Every call takes a fresh sample; the first returns 0.
// Multi-threaded processes may report more than 100.
func CPUUsage() float64 {
	return Sampler().Sample()
}

// Sampler returns the process-wide sampler, creating it on first use.
func Sampler() *cpuusage.Sampler {
	mu.Lock()
	defer mu.Unlock()
	if sampler == nil {
		sampler = newDefault()
	}
	return sampler
}

// Configure replaces the process-wide sampler.
func Configure(s *cpuusage.Sampler) {
	mu.Lock()
	defer mu.Unlock()
	sampler = s
}

// Reset drops the process-wide sampler; the next access builds a new one.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	sampler = nil
}

func newDefault() *cpuusage.Sampler {
	src, err := sources.Open(cpuusage.ScopeProcess, sources.Auto)
	if err != nil {
		logrus.WithError(err).Warn("No process CPU source available, CPU usage will read 0")
		src = sources.Unavailable(cpuusage.ScopeProcess, err)
	}
	return cpuusage.New(src, cpuusage.WithCores(sources.Cores()))
}
