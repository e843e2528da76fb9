//go:build linux || darwin

package sources

import "github.com/tklauser/go-sysconf"

// defaultClockTicks is USER_HZ on virtually every Linux and macOS build.
const defaultClockTicks = 100

// clockTicks returns the kernel's clock ticks per second (sysconf(_SC_CLK_TCK)).
func clockTicks() uint64 {
	tck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || tck <= 0 {
		return defaultClockTicks
	}
	return uint64(tck)
}
