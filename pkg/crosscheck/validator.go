// Package crosscheck compares CPU usage from several sources measured over
// the same window.
package crosscheck

import (
	"math"
	"sort"
	"time"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// ValidationStatus indicates the confidence level of a cross-checked metric.
type ValidationStatus string

const (
	StatusValid    ValidationStatus = "valid"
	StatusSuspect  ValidationStatus = "suspect"
	StatusConflict ValidationStatus = "conflict"
)

// Source is one source's measurement of the shared window.
type Source struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Error string  `json:"error,omitempty"`
}

// ValidationResult holds the cross-check outcome for a scope.
type ValidationResult struct {
	Metric       string           `json:"metric"`
	Sources      []Source         `json:"sources"`
	Consensus    float64          `json:"consensus"`
	MaxDeviation float64          `json:"max_deviation"`
	Status       ValidationStatus `json:"status"`
}

// Validator cross-checks measurements from multiple sources.
type Validator struct {
	SuspectThreshold  float64 // deviation % to mark suspect (default 5%)
	ConflictThreshold float64 // deviation % to mark conflict (default 20%)
	// Floor is the absolute difference in percentage points below which
	// sources always agree; relative deviation is meaningless near idle.
	Floor float64
}

// NewValidator creates a validator with default thresholds.
func NewValidator() *Validator {
	return &Validator{
		SuspectThreshold:  5.0,
		ConflictThreshold: 20.0,
		Floor:             1.0,
	}
}

// CrossCheck validates a metric by comparing values from multiple sources.
// Sources carrying an error are reported but excluded from the consensus.
func (v *Validator) CrossCheck(metric string, sources []Source) ValidationResult {
	result := ValidationResult{
		Metric:  metric,
		Sources: sources,
		Status:  StatusValid,
	}

	values := make([]float64, 0, len(sources))
	for _, s := range sources {
		if s.Error == "" {
			values = append(values, s.Value)
		}
	}
	if len(values) == 0 {
		return result
	}
	sort.Float64s(values)

	if len(values)%2 == 0 {
		result.Consensus = (values[len(values)/2-1] + values[len(values)/2]) / 2
	} else {
		result.Consensus = values[len(values)/2]
	}

	for _, val := range values {
		diff := math.Abs(val - result.Consensus)
		if diff <= v.Floor {
			continue
		}
		dev := 100.0
		if result.Consensus != 0 {
			dev = diff / result.Consensus * 100
		}
		if dev > result.MaxDeviation {
			result.MaxDeviation = dev
		}
	}

	if result.MaxDeviation >= v.ConflictThreshold {
		result.Status = StatusConflict
	} else if result.MaxDeviation >= v.SuspectThreshold {
		result.Status = StatusSuspect
	}

	return result
}

// Measure samples every sampler at the start and end of one window of length
// d and returns the per-source results in order. Samplers should be fresh;
// each is reset first.
func Measure(samplers []*cpuusage.Sampler, d time.Duration) []cpuusage.Result {
	for _, s := range samplers {
		s.Reset()
		s.Measure()
	}
	time.Sleep(d)

	results := make([]cpuusage.Result, len(samplers))
	for i, s := range samplers {
		results[i] = s.Measure()
	}
	return results
}

// Sources converts sampler results into cross-check sources.
func Sources(samplers []*cpuusage.Sampler, results []cpuusage.Result) []Source {
	out := make([]Source, len(samplers))
	for i, s := range samplers {
		out[i] = Source{
			Name:  s.Source().Name(),
			Value: results[i].Percent,
		}
		if results[i].Err != nil {
			out[i].Error = results[i].Err.Error()
		}
	}
	return out
}
