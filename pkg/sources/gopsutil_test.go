package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

func TestProcess_Read(t *testing.T) {
	p, err := NewProcess()
	require.NoError(t, err)
	assert.Equal(t, cpuusage.ScopeProcess, p.Scope())

	r, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(microTicks), r.TicksPerSecond)

	up, err := p.Uptime()
	require.NoError(t, err)
	assert.Positive(t, up)
}

func TestHost_Read(t *testing.T) {
	h := NewHost()
	assert.Equal(t, cpuusage.ScopeSystem, h.Scope())

	r, err := h.Read()
	require.NoError(t, err)
	assert.Positive(t, r.Busy)

	up, err := h.Uptime()
	require.NoError(t, err)
	assert.Positive(t, up)
}

func TestHost_UptimeBaseline(t *testing.T) {
	s := cpuusage.New(NewHost(), cpuusage.WithBaseline(cpuusage.BaselineUptime), cpuusage.WithNormalize(true))
	p := s.Sample()
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 100.0)
}
