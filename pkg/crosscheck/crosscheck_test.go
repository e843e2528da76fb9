package crosscheck

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// stepSource advances busy time by rate ticks and its clock by one second
// on every read.
type stepSource struct {
	name  string
	rate  uint64
	reads int
	err   error
}

func (s *stepSource) Name() string          { return s.name }
func (s *stepSource) Scope() cpuusage.Scope { return cpuusage.ScopeSystem }

func (s *stepSource) Read() (cpuusage.Reading, error) {
	if s.err != nil {
		return cpuusage.Reading{}, s.err
	}
	s.reads++
	return cpuusage.Reading{Busy: uint64(s.reads) * s.rate, TicksPerSecond: 1000}, nil
}

func (s *stepSource) clock() time.Duration {
	return time.Duration(s.reads) * time.Second
}

func newStepSampler(src *stepSource, opts ...cpuusage.Option) *cpuusage.Sampler {
	opts = append([]cpuusage.Option{cpuusage.WithClock(src.clock), cpuusage.WithCores(2)}, opts...)
	return cpuusage.New(src, opts...)
}

func TestCrossCheck_Agreement(t *testing.T) {
	v := NewValidator()
	res := v.CrossCheck("system", []Source{
		{Name: "a", Value: 50},
		{Name: "b", Value: 51},
		{Name: "c", Value: 50.5},
	})
	assert.Equal(t, StatusValid, res.Status)
	assert.InDelta(t, 50.5, res.Consensus, 1e-9)
	assert.Zero(t, res.MaxDeviation)
}

func TestCrossCheck_Conflict(t *testing.T) {
	v := NewValidator()
	res := v.CrossCheck("system", []Source{
		{Name: "a", Value: 40},
		{Name: "b", Value: 80},
	})
	assert.Equal(t, StatusConflict, res.Status)
	assert.InDelta(t, 60, res.Consensus, 1e-9)
	assert.InDelta(t, 33.33, res.MaxDeviation, 0.01)
}

func TestCrossCheck_Suspect(t *testing.T) {
	v := NewValidator()
	res := v.CrossCheck("process", []Source{
		{Name: "a", Value: 100},
		{Name: "b", Value: 112},
	})
	assert.Equal(t, StatusSuspect, res.Status)
}

func TestCrossCheck_IgnoresErroredSources(t *testing.T) {
	v := NewValidator()
	res := v.CrossCheck("system", []Source{
		{Name: "a", Value: 30},
		{Name: "b", Value: 0, Error: "denied"},
	})
	assert.Equal(t, StatusValid, res.Status)
	assert.Equal(t, 30.0, res.Consensus)
	assert.Len(t, res.Sources, 2)
}

func TestCrossCheck_NearIdleFloor(t *testing.T) {
	v := NewValidator()
	res := v.CrossCheck("system", []Source{
		{Name: "a", Value: 0},
		{Name: "b", Value: 0.6},
	})
	assert.Equal(t, StatusValid, res.Status)
}

func TestMeasure(t *testing.T) {
	a := &stepSource{name: "a", rate: 500}
	b := &stepSource{name: "b", rate: 1500}
	failing := &stepSource{name: "broken", err: errors.New("denied")}
	samplers := []*cpuusage.Sampler{newStepSampler(a), newStepSampler(b), newStepSampler(failing)}

	results := Measure(samplers, time.Millisecond)
	require.Len(t, results, 3)
	assert.InDelta(t, 50, results[0].Percent, 1e-9)
	assert.InDelta(t, 150, results[1].Percent, 1e-9)
	assert.Zero(t, results[2].Percent)
	assert.ErrorIs(t, results[2].Err, cpuusage.ErrQueryFailure)

	src := Sources(samplers, results)
	assert.Equal(t, "a", src[0].Name)
	assert.Empty(t, src[0].Error)
	assert.Contains(t, src[2].Error, "denied")
}

func TestRunSanityChecks(t *testing.T) {
	s := newStepSampler(&stepSource{name: "a", rate: 500})
	n := newStepSampler(&stepSource{name: "n", rate: 500}, cpuusage.WithNormalize(true))

	out := RunSanityChecks(
		[]*cpuusage.Sampler{s, s, s, n},
		[]cpuusage.Result{
			{Percent: 150},
			{Percent: math.NaN()},
			{Percent: 250},
			{Percent: 150},
		},
	)
	require.Len(t, out, 4)
	assert.True(t, out[0].Passed)
	assert.False(t, out[1].Passed)
	assert.False(t, out[2].Passed)
	assert.False(t, out[3].Passed)
	assert.Equal(t, "system/a ceiling", out[2].Check)
}

func TestRunSanityChecks_WindowError(t *testing.T) {
	s := newStepSampler(&stepSource{name: "a", rate: 500})
	out := RunSanityChecks([]*cpuusage.Sampler{s}, []cpuusage.Result{{Err: cpuusage.ErrClockAnomaly}})
	require.Len(t, out, 2)
	assert.True(t, out[0].Passed)
	assert.False(t, out[1].Passed)
	assert.Equal(t, "system/a window", out[1].Check)
}

func TestReport(t *testing.T) {
	v := NewValidator().CrossCheck("system", []Source{
		{Name: "procstat", Value: 42},
		{Name: "gopsutil", Error: "unsupported"},
	})
	sanity := []SanityResult{{Check: "system/procstat range", Passed: true, Details: "ok"}}

	var buf bytes.Buffer
	Report(&buf, v, sanity)
	out := buf.String()
	assert.Contains(t, out, "Cross-Check: system")
	assert.Contains(t, out, "procstat")
	assert.Contains(t, out, "42.0%")
	assert.Contains(t, out, "error: unsupported")
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "All 1 sanity checks passed.")
}

func TestReportJSON(t *testing.T) {
	v := NewValidator().CrossCheck("process", []Source{{Name: "rusage", Value: 12}})

	var buf bytes.Buffer
	require.NoError(t, ReportJSON(&buf, v, nil))

	var decoded struct {
		Validation ValidationResult `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "process", decoded.Validation.Metric)
	assert.Equal(t, StatusValid, decoded.Validation.Status)
	assert.Equal(t, 12.0, decoded.Validation.Consensus)
}
