package debug

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

type slowSource struct {
	delay time.Duration
}

func (s slowSource) Name() string          { return "slow" }
func (s slowSource) Scope() cpuusage.Scope { return cpuusage.ScopeProcess }

func (s slowSource) Read() (cpuusage.Reading, error) {
	time.Sleep(s.delay)
	return cpuusage.Reading{Busy: 10, TicksPerSecond: 100}, nil
}

type agedSource struct{ slowSource }

func (agedSource) Uptime() (time.Duration, error) { return time.Minute, nil }

func TestTimedSource(t *testing.T) {
	ts := NewTimedSource(slowSource{delay: 2 * time.Millisecond})
	assert.Equal(t, "slow", ts.Name())
	assert.Equal(t, cpuusage.ScopeProcess, ts.Scope())

	r, err := ts.Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), r.Busy)

	_, _ = ts.Read()
	timing := ts.Timing()
	assert.Equal(t, "slow", timing.Name)
	assert.Equal(t, 2, timing.Reads)
	assert.GreaterOrEqual(t, timing.Last, 2*time.Millisecond)
	assert.GreaterOrEqual(t, timing.Total, 4*time.Millisecond)
}

func TestTimedSource_Uptime(t *testing.T) {
	_, err := NewTimedSource(slowSource{}).Uptime()
	assert.Error(t, err)

	up, err := NewTimedSource(agedSource{}).Uptime()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, up)
}

func TestTimingReport(t *testing.T) {
	var buf bytes.Buffer
	TimingReport(&buf, []SourceTiming{
		{Name: "rusage", Reads: 1, Last: time.Millisecond, Total: time.Millisecond},
		{Name: "gopsutil", Reads: 1, Last: 2 * time.Millisecond, Total: 2 * time.Millisecond},
	})
	out := buf.String()
	assert.Contains(t, out, "Source Timing Report")
	assert.Contains(t, out, "rusage")
	assert.Contains(t, out, "3ms")
}

func TestDumpRawSamples(t *testing.T) {
	var buf bytes.Buffer
	DumpRawSamples(&buf, []string{"procstat", "mach"}, []cpuusage.Result{
		{Percent: 12.5, Sample: cpuusage.Sample{Timestamp: time.Second, Busy: 4242, TicksPerSecond: 100}},
		{Err: &cpuusage.QueryError{Source: "mach", Err: errors.New("denied")}},
	})
	out := buf.String()
	assert.Contains(t, out, "Raw Samples Dump")
	assert.Contains(t, out, "procstat")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "42.420")
	assert.Contains(t, out, "12.5000")
	assert.Contains(t, out, "denied")
}
