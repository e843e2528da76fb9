//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

func spin(d time.Duration) int {
	n := 0
	for deadline := time.Now().Add(d); time.Now().Before(deadline); {
		n++
	}
	return n
}

func TestRusage_BusyTimeGrows(t *testing.T) {
	r := NewRusage()
	assert.Equal(t, cpuusage.ScopeProcess, r.Scope())

	first, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(1e9), first.TicksPerSecond)

	spin(50 * time.Millisecond)

	second, err := r.Read()
	require.NoError(t, err)
	assert.Greater(t, second.Busy, first.Busy)
}

func TestRusage_SamplerReportsLoad(t *testing.T) {
	s := cpuusage.New(NewRusage(), cpuusage.WithNormalize(false))
	assert.Equal(t, 0.0, s.Sample())

	spin(100 * time.Millisecond)

	p := s.Sample()
	assert.Greater(t, p, 0.0)
	assert.LessOrEqual(t, p, 100.0*float64(s.Cores()))
}

func TestRusage_UptimeBaseline(t *testing.T) {
	spin(50 * time.Millisecond)

	var r cpuusage.Source = NewRusage()
	us, ok := r.(cpuusage.UptimeSource)
	require.True(t, ok)
	up, err := us.Uptime()
	require.NoError(t, err)
	assert.Greater(t, up, time.Duration(0))

	s := cpuusage.New(r, cpuusage.WithBaseline(cpuusage.BaselineUptime))
	res := s.Measure()
	require.NoError(t, res.Err)
	assert.Equal(t, cpuusage.BaselineUptime, res.Baseline)
	assert.Greater(t, res.Percent, 0.0)
}
